package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fiberhub/portal/internal/billing"
	"github.com/fiberhub/portal/internal/notification"
	"github.com/fiberhub/portal/internal/profile"
)

var (
	// ErrEmptyMessage indicates a blank message body.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrNotOverdue indicates an overdue notice was requested for a profile
	// whose derived status is not overdue.
	ErrNotOverdue = errors.New("profile is not overdue")
)

// Fixed warning pushed into a resident's thread when payment is overdue.
const overdueNoticeTemplate = "⚠️ AVISO DE PAGO VENCIDO: Estimado residente %s, le informamos que su servicio presenta un pago vencido. Favor de regularizar su situación."

// Service manages the two-party thread between one resident and staff.
type Service struct {
	repo     profile.Repository
	notifier notification.Notifier
	now      func() time.Time
}

// NewService constructs a chat service.
func NewService(repo profile.Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Send appends one message to the resident's thread, authored by from.
func (s *Service) Send(ctx context.Context, userID, from, text string) (profile.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return profile.Message{}, ErrEmptyMessage
	}
	msg, err := s.repo.AddMessage(ctx, userID, profile.Message{Text: text, From: from})
	if err != nil {
		return profile.Message{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindNewMessage,
			Destination: userID,
			Body:        text,
		})
	}
	return msg, nil
}

// MarkRead flags the counterpart's unread messages as read. The admin passes
// RoleResident (reading what the resident wrote) and vice versa.
func (s *Service) MarkRead(ctx context.Context, userID, senderRole string) error {
	return s.repo.MarkMessagesRead(ctx, userID, senderRole)
}

// UnreadFrom counts unread messages authored by the given role.
func UnreadFrom(p profile.Profile, senderRole string) int {
	n := 0
	for _, m := range p.Messages {
		if m.From == senderRole && !m.Read {
			n++
		}
	}
	return n
}

// SendOverdueNotice pushes the templated warning into the resident's thread,
// addressed by alias when set. Only allowed while the derived status is
// overdue; a send failure is returned to the operator, never swallowed.
func (s *Service) SendOverdueNotice(ctx context.Context, userID string) (profile.Message, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return profile.Message{}, err
	}
	status, _ := billing.Derive(p.PaymentStatus, p.NextPaymentDate, s.now())
	if status != profile.StatusOverdue {
		return profile.Message{}, ErrNotOverdue
	}

	name := p.Alias
	if name == "" {
		name = p.Username
	}
	msg, err := s.repo.AddMessage(ctx, userID, profile.Message{
		Text: fmt.Sprintf(overdueNoticeTemplate, name),
		From: profile.RoleAdmin,
	})
	if err != nil {
		return profile.Message{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOverdueNotice,
			Destination: userID,
			Body:        msg.Text,
		})
	}
	return msg, nil
}

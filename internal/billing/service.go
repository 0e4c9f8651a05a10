package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fiberhub/portal/internal/profile"
)

// ErrInvalidStatus indicates a history record carried an unknown status value.
var ErrInvalidStatus = errors.New("invalid payment status")

// Service owns payment-status reconciliation: the render-time pending→overdue
// check and the status/next-due synchronization after a history upsert.
type Service struct {
	repo   profile.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a billing service. now may be nil outside of tests.
func NewService(repo profile.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Reconcile applies the due-date check to a profile about to be rendered and
// persists a pending→overdue transition. The in-memory aggregate always
// reflects the derived value, even when the write fails: the write is
// re-attempted on the next render pass anyway, so failure is only logged.
func (s *Service) Reconcile(ctx context.Context, p *profile.Profile) bool {
	derived, changed := Derive(p.PaymentStatus, p.NextPaymentDate, s.now())
	if !changed {
		return false
	}
	p.PaymentStatus = derived
	status := derived
	if err := s.repo.Update(ctx, p.ID, profile.Updates{PaymentStatus: &status}); err != nil {
		s.logger.Warn("persist overdue transition", "user_id", p.ID, "error", err)
	}
	return true
}

// HistoryInput carries the editable fields of a billing-period record.
type HistoryInput struct {
	Period string
	Date   string
	Amount string
	Status profile.Status
}

// SaveHistoryItem inserts (empty itemID) or edits a history record, then
// synchronizes the profile's status with the most recent record. On insert it
// also advances the next due date by one calendar month, stored in the
// Spanish long form for consistency with legacy rows. The status write is not
// transactional with the upsert; a failure between the two leaves them out of
// sync until the next edit.
func (s *Service) SaveHistoryItem(ctx context.Context, userID, itemID string, input HistoryInput) (profile.Profile, error) {
	if !input.Status.Valid() {
		return profile.Profile{}, ErrInvalidStatus
	}

	item := profile.HistoryItem{
		Period: input.Period,
		Date:   input.Date,
		Amount: input.Amount,
		Status: input.Status,
	}
	inserted := itemID == ""
	if inserted {
		if _, err := s.repo.AddHistory(ctx, userID, item); err != nil {
			return profile.Profile{}, err
		}
	} else {
		if err := s.repo.UpdateHistory(ctx, userID, itemID, item); err != nil {
			return profile.Profile{}, err
		}
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if len(p.PaymentHistory) == 0 {
		return p, nil
	}

	latest := p.PaymentHistory[0]
	final, _ := Derive(latest.Status, latest.Date, s.now())
	updates := profile.Updates{PaymentStatus: &final}
	if inserted {
		next := FormatSpanish(NextDueDate(NormalizeDueDate(latest.Date, s.now())))
		updates.NextPaymentDate = &next
		p.NextPaymentDate = next
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return profile.Profile{}, err
	}
	p.PaymentStatus = final
	return p, nil
}

// DeleteHistoryItem removes a record. Deletion does not resynchronize the
// profile status; the next add or edit will.
func (s *Service) DeleteHistoryItem(ctx context.Context, userID, itemID string) error {
	return s.repo.DeleteHistory(ctx, userID, itemID)
}

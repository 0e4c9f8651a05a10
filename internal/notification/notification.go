package notification

import (
	"context"
	"log/slog"
)

const (
	// KindNewMessage indicates a chat message arrived for a thread.
	KindNewMessage = "new_message"
	// KindOverdueNotice indicates an overdue-payment warning was pushed.
	KindOverdueNotice = "overdue_notice"
)

// Message describes a notification payload.
type Message struct {
	Kind        string `json:"kind"`
	Destination string `json:"destination"`
	Body        string `json:"body"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. Used in dev
// when no Redis is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}

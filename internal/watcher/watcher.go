package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/fiberhub/portal/internal/billing"
	"github.com/fiberhub/portal/internal/notification"
	"github.com/fiberhub/portal/internal/profile"
)

// Watcher periodically re-reads every resident profile, applies the
// pending→overdue check, and raises a notification when the total message
// count grows. It is the server-side stand-in for the views' 5-second
// refresh timers; write failures are logged and naturally retried on the
// next tick.
type Watcher struct {
	profiles profile.Repository
	billing  *billing.Service
	notifier notification.Notifier
	logger   *slog.Logger
	interval time.Duration

	lastTotal int
	firstPass bool
}

// New constructs a watcher sweeping at the given interval.
func New(profiles profile.Repository, billingSvc *billing.Service, notifier notification.Notifier, logger *slog.Logger, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		profiles:  profiles,
		billing:   billingSvc,
		notifier:  notifier,
		logger:    logger,
		interval:  interval,
		firstPass: true,
	}
}

// Run sweeps until the context is cancelled. Ticks are sequential; a slow
// sweep delays the next one rather than overlapping it.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: overdue derivation per resident plus new-message
// detection across all threads. A read failure means no change occurred.
func (w *Watcher) Sweep(ctx context.Context) {
	residents, err := w.profiles.ListByRole(ctx, profile.RoleResident)
	if err != nil {
		w.logger.Warn("watcher sweep: list residents", "error", err)
		return
	}

	total := 0
	transitions := 0
	for i := range residents {
		if w.billing.Reconcile(ctx, &residents[i]) {
			transitions++
		}
		total += len(residents[i].Messages)
	}

	if !w.firstPass && total > w.lastTotal && w.notifier != nil {
		if err := w.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindNewMessage,
			Destination: profile.RoleAdmin,
			Body:        "Nuevo mensaje recibido.",
		}); err != nil {
			w.logger.Warn("watcher sweep: notify", "error", err)
		}
	}
	w.lastTotal = total
	w.firstPass = false

	if transitions > 0 {
		w.logger.Info("watcher sweep: overdue transitions", "count", transitions)
	}
}

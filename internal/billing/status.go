package billing

import (
	"time"

	"github.com/fiberhub/portal/internal/profile"
)

// Payment status transitions. pending→overdue is the only automatic one,
// driven by the due date; every other transition is an explicit admin write.

// Derive decides whether a stored status has silently become overdue. It
// returns the status to display and whether it changed. Idempotent: an
// already-overdue (or paid) status is returned untouched.
func Derive(status profile.Status, dueDate string, now time.Time) (profile.Status, bool) {
	if status != profile.StatusPending {
		return status, false
	}
	deadline := Deadline(NormalizeDueDate(dueDate, now), now)
	if now.After(deadline) {
		return profile.StatusOverdue, true
	}
	return status, false
}

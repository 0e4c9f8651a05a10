package billing

import (
	"testing"
	"time"

	"github.com/fiberhub/portal/internal/profile"
)

func TestDerivePendingPastDeadline(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)
	status, changed := Derive(profile.StatusPending, "2024-01-01", now)
	if status != profile.StatusOverdue || !changed {
		t.Fatalf("expected overdue transition, got %s changed=%v", status, changed)
	}
}

func TestDerivePendingBeforeDeadline(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)
	status, changed := Derive(profile.StatusPending, "2025-06-11", now)
	if status != profile.StatusPending || changed {
		t.Fatalf("expected pending unchanged, got %s changed=%v", status, changed)
	}
}

func TestDerivePendingOnDeadlineDay(t *testing.T) {
	// The cutoff is 23:59:59 on the due date itself.
	now := time.Date(2025, time.June, 10, 23, 0, 0, 0, time.Local)
	status, changed := Derive(profile.StatusPending, "2025-06-10", now)
	if status != profile.StatusPending || changed {
		t.Fatalf("expected pending on due date, got %s changed=%v", status, changed)
	}
}

func TestDeriveIgnoresNonPending(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)
	for _, s := range []profile.Status{profile.StatusPaid, profile.StatusOverdue} {
		status, changed := Derive(s, "2024-01-01", now)
		if status != s || changed {
			t.Fatalf("expected %s untouched, got %s changed=%v", s, status, changed)
		}
	}
}

func TestDeriveIdempotent(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)
	once, _ := Derive(profile.StatusPending, "2024-01-01", now)
	twice, changed := Derive(once, "2024-01-01", now)
	if twice != once || changed {
		t.Fatalf("expected second derivation to be a no-op, got %s changed=%v", twice, changed)
	}
}

package billing

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.Local)

func TestNormalizeDueDateISOIsIdentity(t *testing.T) {
	for _, iso := range []string{"2024-01-01", "2025-03-05", "1999-12-31"} {
		if got := NormalizeDueDate(iso, testNow); got != iso {
			t.Fatalf("expected %q unchanged, got %q", iso, got)
		}
	}
}

func TestNormalizeDueDateSpanishLongForm(t *testing.T) {
	cases := map[string]string{
		"05 de marzo de 2025":      "2025-03-05",
		"5 de marzo de 2025":       "2025-03-05",
		"15 de Enero de 2024":      "2024-01-15",
		"31 de diciembre, de 2023": "2023-12-31",
		"01 de septiembre 2025":    "2025-09-01",
	}
	for raw, want := range cases {
		if got := NormalizeDueDate(raw, testNow); got != want {
			t.Fatalf("normalize %q: expected %q got %q", raw, want, got)
		}
	}
}

func TestNormalizeDueDateFallsBackToNow(t *testing.T) {
	for _, raw := range []string{"", "garbage", "Pendiente", "12 de brumario de 2025", "2025/01/01"} {
		got := NormalizeDueDate(raw, testNow)
		if got != "2025-06-10" {
			t.Fatalf("normalize %q: expected fallback 2025-06-10, got %q", raw, got)
		}
	}
}

func TestDeadlineIsEndOfDay(t *testing.T) {
	deadline := Deadline("2025-06-10", testNow)
	want := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.Local)
	if !deadline.Equal(want) {
		t.Fatalf("expected %v got %v", want, deadline)
	}
}

func TestNextDueDateAddsOneMonth(t *testing.T) {
	if got := NextDueDate("2025-01-15"); got != "2025-02-15" {
		t.Fatalf("expected 2025-02-15 got %q", got)
	}
	if got := NextDueDate("2024-12-05"); got != "2025-01-05" {
		t.Fatalf("expected year rollover 2025-01-05 got %q", got)
	}
}

func TestNextDueDateOverflowRollsForward(t *testing.T) {
	// Jan 31 + 1 month normalizes past February's end, like the legacy
	// date arithmetic did.
	got := NextDueDate("2025-01-31")
	if got != "2025-03-03" {
		t.Fatalf("expected 2025-03-03 got %q", got)
	}
}

func TestFormatSpanish(t *testing.T) {
	if got := FormatSpanish("2025-02-15"); got != "15 de febrero de 2025" {
		t.Fatalf("unexpected rendering %q", got)
	}
	if got := FormatSpanish("2025-03-05"); got != "05 de marzo de 2025" {
		t.Fatalf("expected zero-padded day, got %q", got)
	}
}

func TestSpanishRoundTrip(t *testing.T) {
	for _, iso := range []string{"2025-01-01", "2024-07-19", "2023-11-30"} {
		if got := NormalizeDueDate(FormatSpanish(iso), testNow); got != iso {
			t.Fatalf("round trip %q: got %q", iso, got)
		}
	}
}

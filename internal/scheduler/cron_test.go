package scheduler

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestIsDue_DailyBoundary(t *testing.T) {
	lastRun := mustTime(t, "2025-06-01T00:00:00Z")

	// Граница 02:00 ещё не пересечена
	due, err := IsDue("0 2 * * *", lastRun, mustTime(t, "2025-06-01T01:59:59Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if due {
		t.Error("should not be due before the boundary")
	}

	// Ровно на границе — due
	due, err = IsDue("0 2 * * *", lastRun, mustTime(t, "2025-06-01T02:00:00Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("should be due exactly at the boundary")
	}

	// После границы — due
	due, err = IsDue("0 2 * * *", lastRun, mustTime(t, "2025-06-01T02:00:01Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("should be due after the boundary")
	}
}

func TestIsDue_NoBoundaryAfterRun(t *testing.T) {
	// last_run уже на границе 02:00 — следующая граница завтра
	lastRun := mustTime(t, "2025-06-01T02:00:01Z")

	due, err := IsDue("0 2 * * *", lastRun, mustTime(t, "2025-06-01T02:00:02Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if due {
		t.Error("should not be due again one second after the last run")
	}
}

func TestIsDue_EveryFiveMinutes(t *testing.T) {
	lastRun := mustTime(t, "2025-06-01T12:02:00Z")

	due, err := IsDue("*/5 * * * *", lastRun, mustTime(t, "2025-06-01T12:04:59Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if due {
		t.Error("next boundary is 12:05, should not be due at 12:04:59")
	}

	due, err = IsDue("*/5 * * * *", lastRun, mustTime(t, "2025-06-01T12:05:00Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("should be due at 12:05")
	}
}

// dom и dow объединяются через OR, если ограничены оба.
func TestIsDue_DomDowUnion(t *testing.T) {
	// Полночь 1-го числа ИЛИ понедельника
	const expr = "0 0 1 * 1"

	// 2025-05-31 — суббота; ближайшая граница — 1 июня (dom=1, воскресенье)
	due, err := IsDue(expr, mustTime(t, "2025-05-31T23:00:00Z"), mustTime(t, "2025-06-01T00:00:01Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("day-of-month part should fire on June 1st")
	}

	// После 1 июня ближайшая граница — понедельник 2 июня (dow=1)
	due, err = IsDue(expr, mustTime(t, "2025-06-01T00:30:00Z"), mustTime(t, "2025-06-02T00:00:01Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("day-of-week part should fire on Monday June 2nd")
	}
}

func TestIsDue_SixFieldSeconds(t *testing.T) {
	lastRun := mustTime(t, "2025-06-01T12:00:00Z")

	due, err := IsDue("*/30 * * * * *", lastRun, mustTime(t, "2025-06-01T12:00:30Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("six-field expression with seconds should be due after 30s")
	}
}

func TestIsDue_Idempotent(t *testing.T) {
	lastRun := mustTime(t, "2025-06-01T00:00:00Z")
	now := mustTime(t, "2025-06-01T02:00:01Z")

	first, err := IsDue("0 2 * * *", lastRun, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := IsDue("0 2 * * *", lastRun, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Fatal("IsDue must be idempotent for unchanged inputs")
		}
	}
}

func TestIsDue_InvalidExpression(t *testing.T) {
	for _, expr := range []string{"", "not a cron", "99 * * * *", "* * * *"} {
		if _, err := IsDue(expr, time.Now().Add(-time.Hour), time.Now()); err == nil {
			t.Errorf("expected error for expression %q", expr)
		}
	}
}

func TestNextBoundary_StrictlyAfter(t *testing.T) {
	from := mustTime(t, "2025-06-01T02:00:00Z")

	next, err := NextBoundary("0 2 * * *", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.After(from) {
		t.Errorf("boundary must be strictly after from: %v", next)
	}
	if want := mustTime(t, "2025-06-02T02:00:00Z"); !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("0 2 * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("bogus"); err == nil {
		t.Error("invalid expression accepted")
	}
}

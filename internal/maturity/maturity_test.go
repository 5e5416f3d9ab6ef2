package maturity

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestTradingDays_PlainWeek(t *testing.T) {
	// Mon 2026-03-02 through Mon 2026-03-09: five trading days, two weekend
	// days, no NYSE holidays in that stretch.
	days, err := TradingDays(date(2026, time.March, 2), date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("TradingDays failed: %v", err)
	}
	if days != 5 {
		t.Errorf("expected 5 trading days, got %d", days)
	}
}

func TestTradingDays_SkipsWeekend(t *testing.T) {
	// Fri 2026-03-06 to Mon 2026-03-09 spans only one trading day.
	days, err := TradingDays(date(2026, time.March, 6), date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("TradingDays failed: %v", err)
	}
	if days != 1 {
		t.Errorf("expected 1 trading day, got %d", days)
	}
}

func TestTradingDays_ExpiryNotAfterFrom(t *testing.T) {
	if _, err := TradingDays(date(2026, time.March, 9), date(2026, time.March, 2)); err == nil {
		t.Fatal("expected error for expiry before from")
	}
	if _, err := TradingDays(date(2026, time.March, 2), date(2026, time.March, 2)); err == nil {
		t.Fatal("expected error for expiry equal to from")
	}
}

func TestYearFraction(t *testing.T) {
	got, err := YearFraction(date(2026, time.March, 2), date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("YearFraction failed: %v", err)
	}
	want := 5.0 / 252.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("year fraction mismatch: got %v want %v", got, want)
	}
}

func TestYearFraction_WeekendOnlySpanStaysPositive(t *testing.T) {
	// Sat to Sun contains no trading days; the fraction still must be > 0.
	got, err := YearFraction(date(2026, time.March, 7), date(2026, time.March, 8))
	if err != nil {
		t.Fatalf("YearFraction failed: %v", err)
	}
	if got <= 0 {
		t.Errorf("expected positive year fraction, got %v", got)
	}
}

func TestParseExpiry(t *testing.T) {
	got, err := ParseExpiry("2026-12-18")
	if err != nil {
		t.Fatalf("ParseExpiry failed: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.December || got.Day() != 18 {
		t.Errorf("unexpected date: %v", got)
	}
	if got.Hour() != 12 {
		t.Errorf("expected noon, got hour %d", got.Hour())
	}

	if _, err := ParseExpiry("12/18/2026"); err == nil {
		t.Fatal("expected error for wrong date format")
	}
}

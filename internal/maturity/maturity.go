// Package maturity converts expiry dates into year fractions using the NYSE
// trading calendar.
package maturity

import (
	"fmt"
	"time"

	"github.com/scmhub/calendar"
)

// DateLayout is the expiry date format accepted by the CLI and the API.
const DateLayout = "2006-01-02"

// tradingDaysPerYear is the usual equity-market day count.
const tradingDaysPerYear = 252

var nyse = calendar.XNYS()

// TradingDays counts NYSE trading days in (from, expiry].
func TradingDays(from, expiry time.Time) (int, error) {
	if !expiry.After(from) {
		return 0, fmt.Errorf("expiry %s is not after %s", expiry.Format(DateLayout), from.Format(DateLayout))
	}

	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(expiry); d = d.AddDate(0, 0, 1) {
		if nyse.IsBusinessDay(d) {
			days++
		}
	}
	return days, nil
}

// YearFraction returns the time to expiry in years, counting trading days
// over a 252-day year. The result is always positive: an expiry with no
// trading days left still counts as one day so downstream maturity
// validation holds.
func YearFraction(from, expiry time.Time) (float64, error) {
	days, err := TradingDays(from, expiry)
	if err != nil {
		return 0, err
	}
	if days == 0 {
		days = 1
	}
	return float64(days) / tradingDaysPerYear, nil
}

// ParseExpiry parses a YYYY-MM-DD expiry date at noon UTC. Parsing at noon
// avoids day-boundary surprises when the calendar checks business days.
func ParseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry date format (use YYYY-MM-DD): %w", err)
	}
	return t.Add(12 * time.Hour), nil
}

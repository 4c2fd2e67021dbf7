package timeclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MINUTES - Canonical aggregate type
// =============================================================================

// Minutes is a whole count of worked minutes. Every aggregate (per day, per
// period, per category, grand totals) is carried as Minutes and only turned
// into "H:MM" at the presentation boundary. Never re-parse a formatted value
// to keep summing.
type Minutes int64

var sixty = decimal.NewFromInt(60)

// MinutesOf truncates a duration to whole minutes.
func MinutesOf(d time.Duration) Minutes {
	return Minutes(d / time.Minute)
}

// MinutesFromHours converts decimal hours (e.g. a 40 hour threshold) to minutes,
// rounding to the nearest minute.
func MinutesFromHours(hours decimal.Decimal) Minutes {
	return Minutes(hours.Mul(sixty).Round(0).IntPart())
}

func (m Minutes) Add(other Minutes) Minutes { return m + other }

// Duration returns m as a time.Duration.
func (m Minutes) Duration() time.Duration { return time.Duration(m) * time.Minute }

// Hours returns m as decimal hours rounded to two places (8h30m = 8.50).
func (m Minutes) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty).Round(2)
}

// String renders H:MM. Hours never roll over into days: 30h is "30:00".
func (m Minutes) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d:%02d", sign, m/60, m%60)
}

// ParseHM parses an "H:MM" string. It exists for importing legacy values;
// aggregates must not round-trip through it.
func ParseHM(s string) (Minutes, error) {
	hours, mins, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, &ValidationError{Field: "duration", Value: s, Reason: "expected H:MM"}
	}
	h, err := strconv.ParseInt(hours, 10, 64)
	if err != nil || h < 0 {
		return 0, &ValidationError{Field: "duration", Value: s, Reason: "bad hours"}
	}
	m, err := strconv.ParseInt(mins, 10, 64)
	if err != nil || m < 0 || m > 59 || len(mins) != 2 {
		return 0, &ValidationError{Field: "duration", Value: s, Reason: "bad minutes"}
	}
	return Minutes(h*60 + m), nil
}

package pay

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParseClock parses an "HH:MM" wall-clock or elapsed value into a
// duration since midnight. "7:30" and "07:30" both parse.
func ParseClock(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// ParseElapsed parses an "HH:MM" elapsed duration. Unlike ParseClock the
// hour part is unbounded; an empty string means zero.
func ParseElapsed(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid elapsed value %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("elapsed value %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// HoursWorked derives decimal worked hours from the shift time window:
// (end - start) - interruption, floored at zero, rounded to two
// decimals.
//
// Degraded behavior: a missing or unparsable start or end yields zero
// hours and ok=false. The hourly rules then pay zero; the summary
// surfaces the incomplete-data flag instead of blocking computation.
func HoursWorked(start, end, interruption string) (hours decimal.Decimal, ok bool) {
	if start == "" || end == "" {
		return decimal.Zero, false
	}
	s, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, false
	}
	e, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, false
	}
	pause, err := ParseElapsed(interruption)
	if err != nil {
		return decimal.Zero, false
	}

	worked := e - s - pause
	if worked < 0 {
		worked = 0
	}
	h := decimal.NewFromInt(int64(worked / time.Minute)).
		Div(decimal.NewFromInt(60)).
		Round(2)
	return h, true
}

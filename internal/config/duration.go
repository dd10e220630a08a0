package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30*day + 10*time.Hour + 30*time.Minute
	year  = 365*day + 6*time.Hour
)

var durationUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "nsec": time.Nanosecond,
	"us": time.Microsecond, "usec": time.Microsecond,
	"ms": time.Millisecond, "msec": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": week, "week": week, "weeks": week,
	"M": month, "month": month, "months": month,
	"y": year, "year": year, "years": year,
}

// ParseDuration accepts Go durations ("36h") and human spans such as "14days",
// "2 weeks" or "1w 3d". "M" is a month and "m" a minute.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}

	var total time.Duration
	rest := value
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		digits := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
		if digits == 0 {
			return 0, fmt.Errorf("invalid duration %q: expected a number", value)
		}
		if digits < 0 {
			return 0, fmt.Errorf("invalid duration %q: missing unit", value)
		}
		n, err := strconv.ParseInt(rest[:digits], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}

		rest = strings.TrimLeftFunc(rest[digits:], unicode.IsSpace)
		end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
		if end < 0 {
			end = len(rest)
		}
		unit, ok := durationUnits[rest[:end]]
		if !ok {
			unit, ok = durationUnits[strings.ToLower(rest[:end])]
		}
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", value, rest[:end])
		}
		total += time.Duration(n) * unit
		rest = rest[end:]
	}
	return total, nil
}

// FormatDuration renders whole days as "14days" and anything else in Go syntax
func FormatDuration(d time.Duration) string {
	if d > 0 && d%day == 0 {
		days := d / day
		if days == 1 {
			return "1day"
		}
		return fmt.Sprintf("%ddays", days)
	}
	return d.String()
}

package types

import (
	"time"
)

// DateLayout is the wire format for business dates (no time component).
const DateLayout = "2006-01-02"

// TruncateToDay normalizes t to UTC midnight. Business dates (document date,
// due date, statement cutoffs) are calendar days, so day boundaries must not
// depend on the server timezone.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date in DateLayout, anchored to UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a = TruncateToDay(a)
	b = TruncateToDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// AddDays returns the calendar date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return TruncateToDay(t).AddDate(0, 0, n)
}

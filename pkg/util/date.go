package util

import (
	"time"
)

// DayFormat is the canonical calendar-day key used in persisted records.
const DayFormat = "2006-01-02"

// DayKey returns the calendar-day key for t in its own location.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDay parses a calendar-day key. Returns (t, true) if it parsed.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// BeforeDay reports whether day key a is strictly before day key b.
// Unparseable keys compare as not-before.
func BeforeDay(a, b string) bool {
	ta, ok := ParseDay(a)
	if !ok {
		return false
	}
	tb, ok := ParseDay(b)
	if !ok {
		return false
	}
	return ta.Before(tb)
}

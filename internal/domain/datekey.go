package domain

import (
	"fmt"
	"time"
)

// DateKeyLayout is the calendar date layout used for dates and overlay keys.
const DateKeyLayout = "2006-01-02"

// DateKey is a calendar date in YYYY-MM-DD form. Zero-padded keys compare
// correctly as strings.
type DateKey string

// NewDateKey returns the calendar date of t in t's own location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

// ParseDateKey validates s as a calendar date.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return NewDateKey(t), nil
}

// Time returns the key as midnight UTC. The second result is false for an
// empty or malformed key.
func (d DateKey) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateKeyLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d DateKey) Valid() bool {
	_, ok := d.Time()
	return ok
}

func (d DateKey) IsZero() bool { return d == "" }

func (d DateKey) String() string { return string(d) }

// Compare returns -1, 0 or 1.
func (d DateKey) Compare(o DateKey) int {
	switch {
	case d < o:
		return -1
	case d > o:
		return 1
	default:
		return 0
	}
}

// AddDays shifts the key by n calendar days. Malformed keys are returned unchanged.
func (d DateKey) AddDays(n int) DateKey {
	t, ok := d.Time()
	if !ok {
		return d
	}
	return NewDateKey(t.AddDate(0, 0, n))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b DateKey) int {
	ta, okA := a.Time()
	tb, okB := b.Time()
	if !okA || !okB {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

package util

import (
	"fmt"
	"strconv"
	"time"
)

// DateKeyLayout is the compact ddmmyy form used by bot commands and sheet names.
const DateKeyLayout = "020106"

// DisplayLayout is the dd/mm/yyyy form used in report headers and mail subjects.
const DisplayLayout = "02/01/2006"

// ParseDateKey parses a ddmmyy string into a UTC calendar date in 20yy.
// Overflowing dates such as 310222 are rejected rather than normalized.
func ParseDateKey(s string) (time.Time, error) {
	if len(s) != 6 {
		return time.Time{}, fmt.Errorf("date %q: want ddmmyy", s)
	}
	if _, err := strconv.Atoi(s); err != nil {
		return time.Time{}, fmt.Errorf("date %q: want digits only", s)
	}
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	if t.Year() < 2000 {
		t = t.AddDate(100, 0, 0)
	}
	return t.UTC(), nil
}

// DateKey formats t as ddmmyy.
func DateKey(t time.Time) string { return t.Format(DateKeyLayout) }

// DisplayDate formats t as dd/mm/yyyy.
func DisplayDate(t time.Time) string { return t.Format(DisplayLayout) }

// TruncateDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameOrBefore reports whether a's calendar date is not after b's.
func SameOrBefore(a, b time.Time) bool {
	return !TruncateDay(a).After(TruncateDay(b))
}

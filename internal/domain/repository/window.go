package repository

import "time"

// LookbackDays is how far before the target date a quote query starts.
const LookbackDays = 1

// QueryWindow returns the [from, to] calendar range queried for a target date.
func QueryWindow(target time.Time) (from, to time.Time) {
	y, m, d := target.Date()
	to = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	from = to.AddDate(0, 0, -LookbackDays)
	return from, to
}

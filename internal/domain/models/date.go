package models

import (
	"fmt"
	"time"

	"MarketClose/pkg/util"
)

// ParseReportDate parses a ddmmyy report date, wrapping failures in ErrInvalidDate.
func ParseReportDate(s string) (time.Time, error) {
	t, err := util.ParseDateKey(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t, nil
}

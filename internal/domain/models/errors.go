package models

import "errors"

var (
	// ErrUnavailable marks an instrument with no resolvable quote for the run.
	ErrUnavailable = errors.New("instrument unavailable")
	// ErrEmptyReport is returned when no instrument in any class resolved.
	ErrEmptyReport = errors.New("no market data for date")
	// ErrInvalidDate rejects report dates that are not a real ddmmyy date.
	ErrInvalidDate = errors.New("invalid report date")
	// ErrNotFound is returned by stores with nothing saved yet.
	ErrNotFound = errors.New("not found")
)

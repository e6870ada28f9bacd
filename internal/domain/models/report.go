package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRow is the normalized unit consumed by renderers.
type ReportRow struct {
	Group  string          `json:"group"`
	Name   string          `json:"name"`
	Close  decimal.Decimal `json:"close"`
	Class  AssetClass      `json:"class"`
	Symbol string          `json:"symbol"`
}

// Report is the ordered result of one run: bonds, indices, commodities.
type Report struct {
	Date time.Time   `json:"date"`
	Rows []ReportRow `json:"rows"`
}

func (r Report) Empty() bool { return len(r.Rows) == 0 }

// Partition returns the contiguous rows of one asset class.
func (r Report) Partition(c AssetClass) []ReportRow {
	var out []ReportRow
	for _, row := range r.Rows {
		if row.Class == c {
			out = append(out, row)
		}
	}
	return out
}

// Groups returns the group label of every row, in order.
func (r Report) Groups() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Group
	}
	return out
}

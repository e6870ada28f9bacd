package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"MarketClose/internal/domain/models"
	"MarketClose/pkg/util"
)

const (
	minPadding = 2
	columnSep  = "  "
)

// ColumnHeaders are the first-column headers of each partition table.
var ColumnHeaders = map[models.AssetClass]string{
	models.Bonds:       "Years/spreads",
	models.Indices:     "Index",
	models.Commodities: "Commodity    ",
}

// Text renders the report as a date line followed by one "simple" table per
// non-empty partition: names left aligned, closes right aligned with two
// decimals, a dashed rule under the header.
type Text struct{}

func NewText() *Text { return &Text{} }

func (Text) Render(r models.Report) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n\n", util.DisplayDate(r.Date))

	first := true
	for _, class := range models.AssetClasses {
		rows := r.Partition(class)
		if len(rows) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		writeTable(&b, ColumnHeaders[class], "Close", rows)
	}
	return []byte(b.String()), nil
}

func writeTable(b *strings.Builder, nameHeader, closeHeader string, rows []models.ReportRow) {
	names := make([]string, len(rows))
	closes := make([]string, len(rows))
	nameW := width(nameHeader) + minPadding
	closeW := width(closeHeader) + minPadding
	for i, row := range rows {
		names[i] = row.Name
		closes[i] = row.Close.StringFixed(2)
		nameW = max(nameW, width(names[i]))
		closeW = max(closeW, width(closes[i]))
	}

	b.WriteString(padRight(nameHeader, nameW) + columnSep + padLeft(closeHeader, closeW) + "\n")
	b.WriteString(strings.Repeat("-", nameW) + columnSep + strings.Repeat("-", closeW) + "\n")
	for i := range rows {
		b.WriteString(padRight(names[i], nameW) + columnSep + padLeft(closes[i], closeW) + "\n")
	}
}

func width(s string) int { return utf8.RuneCountInString(s) }

func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-width(s)))
}

func padLeft(s string, w int) string {
	return strings.Repeat(" ", max(0, w-width(s))) + s
}

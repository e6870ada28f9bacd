package usecase

import (
	"sort"
	"time"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
	"MarketClose/pkg/util"
)

// ReportAssembler merges primary quotes and derived spreads into one ordered,
// grouped report.
type ReportAssembler struct {
	cat *catalog.Catalog
}

func NewReportAssembler(cat *catalog.Catalog) *ReportAssembler {
	return &ReportAssembler{cat: cat}
}

// Assemble orders rows by class (bonds, indices, commodities), then by catalog
// position; spreads follow the bond primaries in definition order. Quotes for
// symbols outside the class are ignored and duplicates collapse to the first.
// When nothing resolved the empty report is returned with models.ErrEmptyReport.
func (a *ReportAssembler) Assemble(date time.Time, quotesByClass map[models.AssetClass][]models.Quote, spreads []models.DerivedSpread) (models.Report, error) {
	report := models.Report{Date: util.TruncateDay(date), Rows: []models.ReportRow{}}

	for _, class := range a.cat.Classes() {
		rows := a.primaryRows(class, quotesByClass[class])
		if class == models.Bonds {
			rows = append(rows, a.spreadRows(rows, spreads)...)
		}
		report.Rows = append(report.Rows, rows...)
	}

	if report.Empty() {
		return report, models.ErrEmptyReport
	}
	return report, nil
}

func (a *ReportAssembler) primaryRows(class models.AssetClass, quotes []models.Quote) []models.ReportRow {
	type ranked struct {
		pos   int
		in    models.Instrument
		quote models.Quote
	}
	seen := make(map[string]bool, len(quotes))
	items := make([]ranked, 0, len(quotes))
	for _, q := range quotes {
		in, ok := a.cat.Lookup(q.Symbol)
		if !ok || in.Class != class || seen[q.Symbol] {
			continue
		}
		seen[q.Symbol] = true
		items = append(items, ranked{pos: a.cat.Position(q.Symbol), in: in, quote: q})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	rows := make([]models.ReportRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, models.ReportRow{
			Group:  class.Label(),
			Name:   it.in.Label,
			Close:  it.quote.Close,
			Class:  class,
			Symbol: it.in.Symbol,
		})
	}
	return rows
}

func (a *ReportAssembler) spreadRows(bondRows []models.ReportRow, spreads []models.DerivedSpread) []models.ReportRow {
	present := make(map[string]bool, len(bondRows))
	for _, r := range bondRows {
		present[r.Symbol] = true
	}
	order := make(map[string]int)
	for i, d := range a.cat.Spreads() {
		order[d.Label] = i
	}

	seen := make(map[string]bool, len(spreads))
	kept := make([]models.DerivedSpread, 0, len(spreads))
	for _, s := range spreads {
		if _, known := order[s.Label]; !known || seen[s.Label] || !present[s.Long] || !present[s.Short] {
			continue
		}
		seen[s.Label] = true
		kept = append(kept, s)
	}
	sort.SliceStable(kept, func(i, j int) bool { return order[kept[i].Label] < order[kept[j].Label] })

	rows := make([]models.ReportRow, 0, len(kept))
	for _, s := range kept {
		rows = append(rows, models.ReportRow{
			Group:  models.Bonds.Label(),
			Name:   s.Label,
			Close:  s.Close,
			Class:  models.Bonds,
			Symbol: s.Label,
		})
	}
	return rows
}

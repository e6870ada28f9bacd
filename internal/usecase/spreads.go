package usecase

import (
	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
)

// DeriveBondSpreads computes the standard yield-curve spreads (10-2, 20-5).
func DeriveBondSpreads(book models.QuoteBook) []models.DerivedSpread {
	return DeriveSpreads(book, catalog.BondSpreads)
}

// DeriveSpreads computes long - short for each definition whose operands both
// resolved. Values are not rounded.
func DeriveSpreads(book models.QuoteBook, defs []models.SpreadDef) []models.DerivedSpread {
	out := make([]models.DerivedSpread, 0, len(defs))
	for _, d := range defs {
		if !book.Has(d.Long, d.Short) {
			continue
		}
		out = append(out, models.DerivedSpread{
			Label: d.Label,
			Long:  d.Long,
			Short: d.Short,
			Close: book[d.Long].Close.Sub(book[d.Short].Close),
		})
	}
	return out
}

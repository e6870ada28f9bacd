package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a resolved closing value for one instrument.
type Quote struct {
	Symbol string          `json:"symbol"`
	Close  decimal.Decimal `json:"close"`
	AsOf   time.Time       `json:"as_of"`
}

// Match is one candidate returned by a quote source search, best first.
type Match struct {
	Key   string     `json:"key"`
	Name  string     `json:"name"`
	Class AssetClass `json:"class"`
}

// Bar is a single dated close in a quote source series.
type Bar struct {
	Date  time.Time
	Close decimal.Decimal
}

// DerivedSpread is a synthetic bond instrument computed from two resolved tenors.
type DerivedSpread struct {
	Label string          `json:"label"`
	Long  string          `json:"long"`
	Short string          `json:"short"`
	Close decimal.Decimal `json:"close"`
}

// QuoteBook holds the resolved quotes of one run keyed by symbol.
type QuoteBook map[string]Quote

// Has reports whether every given symbol resolved.
func (b QuoteBook) Has(symbols ...string) bool {
	for _, s := range symbols {
		if _, ok := b[s]; !ok {
			return false
		}
	}
	return true
}

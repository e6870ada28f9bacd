// Package catalog defines the fixed instrument universe of the daily report.
package catalog

import (
	"fmt"

	"MarketClose/internal/domain/models"
)

// Catalog is an immutable, ordered instrument universe.
type Catalog struct {
	byClass map[models.AssetClass][]models.Instrument
	index   map[string]int
	lookup  map[string]models.Instrument
	spreads []models.SpreadDef
}

// BondSpreads are the derived yield-curve spreads, in report order.
var BondSpreads = []models.SpreadDef{
	{Label: "10-2", Long: "us10y", Short: "us2y"},
	{Label: "20-5", Long: "us20y", Short: "us5y"},
}

func bond(symbol string) models.Instrument {
	return models.Instrument{Symbol: symbol, Class: models.Bonds, Label: symbol, SearchKey: symbol}
}

func instrument(class models.AssetClass, symbol, label string) models.Instrument {
	return models.Instrument{Symbol: symbol, Class: class, Label: label, SearchKey: label}
}

var universe = []models.Instrument{
	bond("us1y"),
	bond("us2y"),
	bond("us3y"),
	bond("us5y"),
	bond("us7y"),
	bond("us10y"),
	bond("us20y"),
	bond("us30y"),

	instrument(models.Indices, "spx", "S&P 500"),
	instrument(models.Indices, "ndx", "Nasdaq"),
	instrument(models.Indices, "shcomp", "Shanghai Comp."),
	instrument(models.Indices, "imoex", "MOEX Russia"),
	instrument(models.Indices, "dxy", "DXY"),

	instrument(models.Commodities, "gold", "Gold"),
	instrument(models.Commodities, "brent", "Brent"),
}

// Default returns the standard universe. searchKeys overrides the search text
// of individual symbols for the configured quote source.
func Default(searchKeys map[string]string) *Catalog {
	c, err := New(universe, BondSpreads, searchKeys)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog; instrument order within a class is kept as given.
func New(instruments []models.Instrument, spreads []models.SpreadDef, searchKeys map[string]string) (*Catalog, error) {
	c := &Catalog{
		byClass: make(map[models.AssetClass][]models.Instrument),
		index:   make(map[string]int, len(instruments)),
		lookup:  make(map[string]models.Instrument, len(instruments)),
		spreads: append([]models.SpreadDef(nil), spreads...),
	}
	for _, in := range instruments {
		if !in.Class.Valid() {
			return nil, fmt.Errorf("catalog: %s has unknown class %q", in.Symbol, in.Class)
		}
		if _, dup := c.lookup[in.Symbol]; dup {
			return nil, fmt.Errorf("catalog: duplicate symbol %s", in.Symbol)
		}
		if k, ok := searchKeys[in.Symbol]; ok && k != "" {
			in.SearchKey = k
		}
		c.index[in.Symbol] = len(c.byClass[in.Class])
		c.byClass[in.Class] = append(c.byClass[in.Class], in)
		c.lookup[in.Symbol] = in
	}
	for _, s := range c.spreads {
		long, lok := c.lookup[s.Long]
		short, sok := c.lookup[s.Short]
		if !lok || !sok || long.Class != models.Bonds || short.Class != models.Bonds {
			return nil, fmt.Errorf("catalog: spread %s needs two bond operands", s.Label)
		}
	}
	return c, nil
}

// Classes returns the asset classes in report order.
func (c *Catalog) Classes() []models.AssetClass {
	return append([]models.AssetClass(nil), models.AssetClasses...)
}

// Instruments returns the instruments of a class in catalog order.
func (c *Catalog) Instruments(class models.AssetClass) []models.Instrument {
	return append([]models.Instrument(nil), c.byClass[class]...)
}

// All returns every instrument, class by class.
func (c *Catalog) All() []models.Instrument {
	var out []models.Instrument
	for _, class := range models.AssetClasses {
		out = append(out, c.byClass[class]...)
	}
	return out
}

// Lookup finds an instrument by symbol.
func (c *Catalog) Lookup(symbol string) (models.Instrument, bool) {
	in, ok := c.lookup[symbol]
	return in, ok
}

// Position is the instrument's index within its class, -1 when unknown.
func (c *Catalog) Position(symbol string) int {
	if i, ok := c.index[symbol]; ok {
		return i
	}
	return -1
}

// Spreads returns the derived spread definitions in order.
func (c *Catalog) Spreads() []models.SpreadDef {
	return append([]models.SpreadDef(nil), c.spreads...)
}

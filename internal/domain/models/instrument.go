package models

// AssetClass is a top-level grouping of instruments.
type AssetClass string

const (
	Bonds       AssetClass = "bonds"
	Indices     AssetClass = "indices"
	Commodities AssetClass = "commodities"
)

// AssetClasses lists every class in report order.
var AssetClasses = []AssetClass{Bonds, Indices, Commodities}

// Label is the group label carried by every report row of the class.
func (c AssetClass) Label() string {
	switch c {
	case Bonds:
		return "Bonds"
	case Indices:
		return "Indices"
	case Commodities:
		return "Commodities"
	default:
		return string(c)
	}
}

// Rank orders classes for report partitions; unknown classes sort last.
func (c AssetClass) Rank() int {
	for i, ac := range AssetClasses {
		if ac == c {
			return i
		}
	}
	return len(AssetClasses)
}

func (c AssetClass) Valid() bool { return c.Rank() < len(AssetClasses) }

// Instrument is a static member of the report universe.
type Instrument struct {
	Symbol    string     `json:"symbol"`
	Class     AssetClass `json:"class"`
	Label     string     `json:"label"`
	SearchKey string     `json:"search_key"`
}

// SpreadDef names a derived spread as long minus short.
type SpreadDef struct {
	Label string
	Long  string
	Short string
}

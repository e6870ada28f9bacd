package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
)

func quotes(pairs ...string) []models.Quote {
	out := make([]models.Quote, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Quote{Symbol: pairs[i], Close: dec(pairs[i+1]), AsOf: targetDate})
	}
	return out
}

func book(qs ...[]models.Quote) models.QuoteBook {
	b := models.QuoteBook{}
	for _, group := range qs {
		for _, q := range group {
			b[q.Symbol] = q
		}
	}
	return b
}

func allBonds() []models.Quote {
	return quotes(
		"us1y", "2.10", "us2y", "2.50", "us3y", "2.60", "us5y", "2.80",
		"us7y", "2.90", "us10y", "3.00", "us20y", "3.40", "us30y", "3.30",
	)
}

func names(r models.Report) []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Name
	}
	return out
}

func TestAssemble_ScenarioA_AllBondsWithSpreads(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := allBonds()
	spreads := DeriveSpreads(book(bonds), cat.Spreads())

	r, err := NewReportAssembler(cat).Assemble(targetDate, map[models.AssetClass][]models.Quote{models.Bonds: bonds}, spreads)
	require.NoError(t, err)
	require.Len(t, r.Rows, 10)

	assert.Equal(t, []string{"us1y", "us2y", "us3y", "us5y", "us7y", "us10y", "us20y", "us30y", "10-2", "20-5"}, names(r))
	assert.True(t, r.Rows[8].Close.Equal(dec("0.50")))
	assert.True(t, r.Rows[9].Close.Equal(dec("0.60")))
	for _, row := range r.Rows {
		assert.Equal(t, "Bonds", row.Group)
	}
}

func TestAssemble_ScenarioB_SingleBondNoSpreads(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := quotes("us1y", "4.80")

	r, err := NewReportAssembler(cat).Assemble(targetDate, map[models.AssetClass][]models.Quote{models.Bonds: bonds}, DeriveSpreads(book(bonds), cat.Spreads()))
	require.NoError(t, err)
	assert.Equal(t, []string{"us1y"}, names(r))
}

func TestAssemble_ScenarioC_NothingResolved(t *testing.T) {
	r, err := NewReportAssembler(catalog.Default(nil)).Assemble(targetDate, nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptyReport)
	assert.True(t, r.Empty())
	assert.Equal(t, targetDate, r.Date)
}

func TestAssemble_ScenarioD_GroupsFollowBonds(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := allBonds()
	byClass := map[models.AssetClass][]models.Quote{
		models.Commodities: quotes("gold", "1950.10"),
		models.Indices:     quotes("spx", "4100.25"),
		models.Bonds:       bonds,
	}

	r, err := NewReportAssembler(cat).Assemble(targetDate, byClass, DeriveSpreads(book(bonds), cat.Spreads()))
	require.NoError(t, err)
	require.Len(t, r.Rows, 12)

	assert.Equal(t, "Indices", r.Rows[10].Group)
	assert.Equal(t, "S&P 500", r.Rows[10].Name)
	assert.True(t, r.Rows[10].Close.Equal(dec("4100.25")))
	assert.Equal(t, "Commodities", r.Rows[11].Group)
	assert.Equal(t, "Gold", r.Rows[11].Name)
}

func TestAssemble_CatalogOrderNotInputOrder(t *testing.T) {
	cat := catalog.Default(nil)
	byClass := map[models.AssetClass][]models.Quote{
		models.Indices: quotes("dxy", "103", "spx", "4100", "ndx", "12000"),
		models.Bonds:   quotes("us30y", "3.3", "us1y", "2.1"),
	}

	r, err := NewReportAssembler(cat).Assemble(targetDate, byClass, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"us1y", "us30y", "S&P 500", "Nasdaq", "DXY"}, names(r))
}

func TestAssemble_MonotonicGroups(t *testing.T) {
	cat := catalog.Default(nil)
	byClass := map[models.AssetClass][]models.Quote{
		models.Commodities: quotes("brent", "110", "gold", "1950"),
		models.Indices:     quotes("imoex", "2400"),
		models.Bonds:       quotes("us5y", "2.8"),
	}

	r, err := NewReportAssembler(cat).Assemble(targetDate, byClass, nil)
	require.NoError(t, err)

	last := -1
	for _, row := range r.Rows {
		rank := row.Class.Rank()
		assert.GreaterOrEqual(t, rank, last)
		last = rank
		assert.Equal(t, row.Class.Label(), row.Group)
	}
}

func TestAssemble_DropsDuplicatesUnknownAndMisclassified(t *testing.T) {
	cat := catalog.Default(nil)
	byClass := map[models.AssetClass][]models.Quote{
		models.Bonds:   quotes("us2y", "2.5", "us2y", "9.9", "spx", "4100", "bogus", "1"),
		models.Indices: quotes("spx", "4100"),
	}

	r, err := NewReportAssembler(cat).Assemble(targetDate, byClass, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"us2y", "S&P 500"}, names(r))
	assert.True(t, r.Rows[0].Close.Equal(dec("2.5")))
}

func TestAssemble_SpreadNeedsBothOperandRows(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := quotes("us10y", "3.0")
	stale := []models.DerivedSpread{{Label: "10-2", Long: "us10y", Short: "us2y", Close: dec("0.5")}}

	r, err := NewReportAssembler(cat).Assemble(targetDate, map[models.AssetClass][]models.Quote{models.Bonds: bonds}, stale)
	require.NoError(t, err)
	assert.Equal(t, []string{"us10y"}, names(r))
}

func TestAssemble_SpreadsInDefinitionOrder(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := allBonds()
	spreads := DeriveSpreads(book(bonds), cat.Spreads())
	reversed := []models.DerivedSpread{spreads[1], spreads[0]}

	r, err := NewReportAssembler(cat).Assemble(targetDate, map[models.AssetClass][]models.Quote{models.Bonds: bonds}, reversed)
	require.NoError(t, err)
	assert.Equal(t, "10-2", r.Rows[8].Name)
	assert.Equal(t, "20-5", r.Rows[9].Name)
}

func TestAssemble_IdempotentAndBounded(t *testing.T) {
	cat := catalog.Default(nil)
	bonds := quotes("us2y", "2.5", "us10y", "3.0", "us5y", "2.8")
	byClass := map[models.AssetClass][]models.Quote{
		models.Bonds:   bonds,
		models.Indices: quotes("spx", "4100.25"),
	}
	b := book(bonds, byClass[models.Indices])
	a := NewReportAssembler(cat)

	spreads1 := DeriveSpreads(b, cat.Spreads())
	r1, err := a.Assemble(targetDate, byClass, spreads1)
	require.NoError(t, err)
	spreads2 := DeriveSpreads(b, cat.Spreads())
	r2, err := a.Assemble(targetDate, byClass, spreads2)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.LessOrEqual(t, len(r1.Rows), len(b)+len(spreads1))
	assert.Equal(t, []string{"us2y", "us5y", "us10y", "10-2", "S&P 500"}, names(r1))
}

func TestDeriveSpreads(t *testing.T) {
	b := book(quotes("us10y", "3.00", "us2y", "2.50", "us20y", "3.40"))
	got := DeriveBondSpreads(b)
	require.Len(t, got, 1)
	assert.Equal(t, "10-2", got[0].Label)
	assert.True(t, got[0].Close.Equal(dec("0.50")))

	b["us5y"] = models.Quote{Symbol: "us5y", Close: dec("3.55")}
	got = DeriveBondSpreads(b)
	require.Len(t, got, 2)
	assert.True(t, got[1].Close.Equal(dec("-0.15")))

	assert.Empty(t, DeriveBondSpreads(models.QuoteBook{}))
}

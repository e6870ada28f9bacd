package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/domain/models"
)

func TestDefaultUniverse(t *testing.T) {
	c := Default(nil)

	bonds := c.Instruments(models.Bonds)
	require.Len(t, bonds, 8)
	assert.Equal(t, "us1y", bonds[0].Symbol)
	assert.Equal(t, "us30y", bonds[7].Symbol)
	assert.Len(t, c.Instruments(models.Indices), 5)
	assert.Len(t, c.Instruments(models.Commodities), 2)
	assert.Len(t, c.All(), 15)

	assert.Equal(t, []models.AssetClass{models.Bonds, models.Indices, models.Commodities}, c.Classes())
}

func TestLookupAndPosition(t *testing.T) {
	c := Default(nil)

	spx, ok := c.Lookup("spx")
	require.True(t, ok)
	assert.Equal(t, "S&P 500", spx.Label)
	assert.Equal(t, models.Indices, spx.Class)

	assert.Equal(t, 5, c.Position("us10y"))
	assert.Equal(t, 1, c.Position("brent"))
	assert.Equal(t, -1, c.Position("nope"))
}

func TestSearchKeyOverride(t *testing.T) {
	c := Default(map[string]string{"us10y": "^TNX", "gold": ""})

	in, _ := c.Lookup("us10y")
	assert.Equal(t, "^TNX", in.SearchKey)
	gold, _ := c.Lookup("gold")
	assert.Equal(t, "Gold", gold.SearchKey)
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	_, err := New([]models.Instrument{bond("us1y"), bond("us1y")}, nil, nil)
	assert.Error(t, err)

	_, err = New([]models.Instrument{{Symbol: "x", Class: "fx"}}, nil, nil)
	assert.Error(t, err)

	_, err = New([]models.Instrument{bond("us10y")}, BondSpreads, nil)
	assert.Error(t, err)
}

func TestCatalogIsNotMutatedThroughAccessors(t *testing.T) {
	c := Default(nil)
	bonds := c.Instruments(models.Bonds)
	bonds[0].Label = "changed"

	in, _ := c.Lookup("us1y")
	assert.Equal(t, "us1y", in.Label)
	assert.Equal(t, "us1y", c.Instruments(models.Bonds)[0].Label)
}

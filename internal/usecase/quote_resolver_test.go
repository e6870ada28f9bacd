package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
	"MarketClose/pkg/logger"
)

func bondInstrument(symbol string) models.Instrument {
	return models.Instrument{Symbol: symbol, Class: models.Bonds, Label: symbol, SearchKey: symbol}
}

func TestResolve_QueriesPreviousDayWindow(t *testing.T) {
	src := newFakeSource().close("us10y", "3.00")
	r := NewQuoteResolver(src, newFakeMetrics(), logger.Nop())

	res := r.Resolve(context.Background(), bondInstrument("us10y"), targetDate.Add(15*time.Hour))
	require.True(t, res.OK())
	assert.True(t, res.Quote.Close.Equal(dec("3.00")))
	assert.Equal(t, targetDate, res.Quote.AsOf)

	require.Len(t, src.windows, 1)
	assert.Equal(t, targetDate.AddDate(0, 0, -1), src.windows[0][0])
	assert.Equal(t, targetDate, src.windows[0][1])
}

func TestResolve_UsesFirstMatch(t *testing.T) {
	src := newFakeSource().close("us2y", "2.50")
	src.extra["us2y"] = []models.Match{{Key: "us2y-other"}}
	r := NewQuoteResolver(src, newFakeMetrics(), logger.Nop())

	res := r.Resolve(context.Background(), bondInstrument("us2y"), targetDate)
	require.True(t, res.OK())
	assert.Equal(t, []string{"us2y"}, src.histories)
}

func TestResolve_LastBarAtOrBeforeTarget(t *testing.T) {
	src := newFakeSource()
	src.bars["gold"] = []models.Bar{
		{Date: targetDate.AddDate(0, 0, -1), Close: dec("1940")},
		{Date: targetDate.AddDate(0, 0, 1), Close: dec("1999")},
	}
	r := NewQuoteResolver(src, newFakeMetrics(), logger.Nop())

	res := r.Resolve(context.Background(), models.Instrument{Symbol: "gold", Class: models.Commodities, SearchKey: "gold"}, targetDate)
	require.True(t, res.OK())
	assert.True(t, res.Quote.Close.Equal(dec("1940")))
	assert.Equal(t, targetDate.AddDate(0, 0, -1), res.Quote.AsOf)
}

func TestResolve_UnavailableCases(t *testing.T) {
	src := newFakeSource()
	src.searchErr["boom"] = errors.New("upstream 500")
	src.bars["empty"] = nil
	src.bars["future"] = []models.Bar{{Date: targetDate.AddDate(0, 0, 2), Close: dec("1")}}
	src.bars["slow"] = []models.Bar{{Date: targetDate, Close: dec("1")}}
	src.delay["slow"] = 200 * time.Millisecond

	m := newFakeMetrics()
	r := NewQuoteResolver(src, m, logger.Nop(), WithCallTimeout(20*time.Millisecond))

	for _, key := range []string{"boom", "nomatch", "empty", "future", "slow"} {
		t.Run(key, func(t *testing.T) {
			res := r.Resolve(context.Background(), bondInstrument(key), targetDate)
			require.False(t, res.OK())
			assert.ErrorIs(t, res.Err, models.ErrUnavailable)
		})
	}
	assert.Equal(t, 5, m.quotes["bonds/unavailable"])
}

func TestResolveAll_KeepsInputOrderAndIsolatesFailures(t *testing.T) {
	src := newFakeSource().close("a", "1").close("c", "3").close("d", "4")
	src.delay["a"] = 30 * time.Millisecond
	src.searchErr["b"] = errors.New("down")

	r := NewQuoteResolver(src, newFakeMetrics(), logger.Nop(), WithWorkers(4))
	ins := []models.Instrument{bondInstrument("a"), bondInstrument("b"), bondInstrument("c"), bondInstrument("d")}

	rs := r.ResolveAll(context.Background(), ins, targetDate)
	require.Len(t, rs, 4)
	for i, res := range rs {
		assert.Equal(t, ins[i].Symbol, res.Instrument.Symbol)
	}
	assert.True(t, rs[0].OK())
	assert.False(t, rs[1].OK())
	assert.True(t, rs[2].OK())
	assert.True(t, rs[3].OK())
}

func TestFold(t *testing.T) {
	us1y := bondInstrument("us1y")
	spx := models.Instrument{Symbol: "spx", Class: models.Indices}
	rs := []Resolution{
		{Instrument: us1y, Quote: models.Quote{Symbol: "us1y", Close: dec("4")}},
		{Instrument: us1y, Quote: models.Quote{Symbol: "us1y", Close: dec("9")}},
		{Instrument: spx, Err: models.ErrUnavailable},
	}

	got := Fold(rs)
	assert.Len(t, got.Book, 1)
	assert.True(t, got.Book["us1y"].Close.Equal(dec("4")))
	assert.Len(t, got.ByClass[models.Bonds], 1)
	assert.Equal(t, []models.Instrument{spx}, got.Missing)
}

func TestResolveAll_DefaultCatalog(t *testing.T) {
	cat := catalog.Default(nil)
	src := newFakeSource().close("us10y", "3.00").close("S&P 500", "4100.25")
	r := NewQuoteResolver(src, newFakeMetrics(), logger.Nop())

	got := Fold(r.ResolveAll(context.Background(), cat.All(), targetDate))
	assert.Len(t, got.Book, 2)
	assert.Len(t, got.Missing, len(cat.All())-2)
}

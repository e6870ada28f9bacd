// Package financego adapts github.com/piquette/finance-go to the quote source
// contract. The library has no search endpoint, so Search treats the text as a
// ticker and confirms it with a quote lookup.
package financego

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"MarketClose/internal/domain/models"
)

type barIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// Source implements repository.QuoteSource.
type Source struct {
	lookup func(symbol string) (*finance.Quote, error)
	bars   func(p *chart.Params) barIter
}

func New() *Source {
	return &Source{
		lookup: quote.Get,
		bars:   func(p *chart.Params) barIter { return chart.Get(p) },
	}
}

func (s *Source) Search(ctx context.Context, text string, class models.AssetClass) ([]models.Match, error) {
	var q *finance.Quote
	err := call(ctx, func() error {
		var err error
		q, err = s.lookup(text)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", text, err)
	}
	if q == nil {
		return nil, nil
	}
	return []models.Match{{Key: q.Symbol, Name: q.ShortName, Class: class}}, nil
}

func (s *Source) History(ctx context.Context, m models.Match, from, to time.Time) ([]models.Bar, error) {
	end := to.AddDate(0, 0, 1)
	params := &chart.Params{
		Symbol:   m.Key,
		Start:    datetime.New(&from),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	var bars []models.Bar
	err := call(ctx, func() error {
		it := s.bars(params)
		for it.Next() {
			b := it.Bar()
			if b == nil || b.Close.IsZero() {
				continue
			}
			ts := time.Unix(int64(b.Timestamp), 0).UTC()
			bars = append(bars, models.Bar{
				Date:  time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
				Close: b.Close,
			})
		}
		return it.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", m.Key, err)
	}
	return bars, nil
}

// call runs a blocking library call and gives up when ctx is done. The
// goroutine is left to finish on its own.
func call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

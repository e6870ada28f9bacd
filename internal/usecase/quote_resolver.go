package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"MarketClose/internal/domain/models"
	drepo "MarketClose/internal/domain/repository"
	"MarketClose/pkg/logger"
	"MarketClose/pkg/util"
)

const (
	OutcomeResolved    = "resolved"
	OutcomeUnavailable = "unavailable"
)

var (
	errNoMatch = errors.New("no search match")
	errNoData  = errors.New("empty series")
)

// Resolution is the outcome for one instrument: a quote, or an error wrapping
// models.ErrUnavailable.
type Resolution struct {
	Instrument models.Instrument
	Quote      models.Quote
	Err        error
}

func (r Resolution) OK() bool { return r.Err == nil }

// QuoteResolver wraps the quote source with per-instrument failure isolation.
type QuoteResolver struct {
	source  drepo.QuoteSource
	metrics drepo.Metrics
	logger  *logger.Logger
	timeout time.Duration
	workers int
}

type ResolverOption func(*QuoteResolver)

// WithCallTimeout bounds each instrument lookup; a timeout counts as unavailable.
func WithCallTimeout(d time.Duration) ResolverOption {
	return func(r *QuoteResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithWorkers sets how many instruments resolve concurrently.
func WithWorkers(n int) ResolverOption {
	return func(r *QuoteResolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

func NewQuoteResolver(source drepo.QuoteSource, metrics drepo.Metrics, l *logger.Logger, opts ...ResolverOption) *QuoteResolver {
	r := &QuoteResolver{
		source:  source,
		metrics: metrics,
		logger:  l,
		timeout: 10 * time.Second,
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the close of one instrument as of target.
func (r *QuoteResolver) Resolve(ctx context.Context, in models.Instrument, target time.Time) Resolution {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q, err := r.lookup(callCtx, in, target)
	r.metrics.RecordLatency("quote_resolve", time.Since(start).Seconds())
	if err != nil {
		r.metrics.RecordQuote(in.Class, OutcomeUnavailable)
		r.logger.Debug("quote unavailable",
			logger.String("symbol", in.Symbol),
			logger.String("search", in.SearchKey),
			logger.Error(err))
		return Resolution{Instrument: in, Err: fmt.Errorf("%w: %s: %v", models.ErrUnavailable, in.Symbol, err)}
	}

	r.metrics.RecordQuote(in.Class, OutcomeResolved)
	return Resolution{Instrument: in, Quote: q}
}

func (r *QuoteResolver) lookup(ctx context.Context, in models.Instrument, target time.Time) (models.Quote, error) {
	from, to := drepo.QueryWindow(target)

	matches, err := r.source.Search(ctx, in.SearchKey, in.Class)
	if err != nil {
		return models.Quote{}, fmt.Errorf("search: %w", err)
	}
	if len(matches) == 0 {
		return models.Quote{}, errNoMatch
	}

	bars, err := r.source.History(ctx, matches[0], from, to)
	if err != nil {
		return models.Quote{}, fmt.Errorf("history %s: %w", matches[0].Key, err)
	}
	bar, ok := lastAtOrBefore(bars, to)
	if !ok {
		return models.Quote{}, errNoData
	}
	return models.Quote{Symbol: in.Symbol, Close: bar.Close, AsOf: util.TruncateDay(bar.Date)}, nil
}

// ResolveAll resolves every instrument; the result keeps the input order no
// matter in which order lookups complete.
func (r *QuoteResolver) ResolveAll(ctx context.Context, instruments []models.Instrument, target time.Time) []Resolution {
	out := make([]Resolution, len(instruments))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, in := range instruments {
		g.Go(func() error {
			out[i] = r.Resolve(ctx, in, target)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Resolved is the fold of a run's resolutions.
type Resolved struct {
	Book    models.QuoteBook
	ByClass map[models.AssetClass][]models.Quote
	Missing []models.Instrument
}

// Fold accumulates resolutions into per-symbol and per-class views.
func Fold(rs []Resolution) Resolved {
	acc := Resolved{
		Book:    make(models.QuoteBook, len(rs)),
		ByClass: make(map[models.AssetClass][]models.Quote),
	}
	for _, res := range rs {
		if !res.OK() {
			acc.Missing = append(acc.Missing, res.Instrument)
			continue
		}
		if _, dup := acc.Book[res.Quote.Symbol]; dup {
			continue
		}
		acc.Book[res.Quote.Symbol] = res.Quote
		acc.ByClass[res.Instrument.Class] = append(acc.ByClass[res.Instrument.Class], res.Quote)
	}
	return acc
}

func lastAtOrBefore(bars []models.Bar, end time.Time) (models.Bar, bool) {
	var (
		best  models.Bar
		found bool
	)
	for _, b := range bars {
		if !util.SameOrBefore(b.Date, end) {
			continue
		}
		if !found || !b.Date.Before(best.Date) {
			best = b
			found = true
		}
	}
	return best, found
}

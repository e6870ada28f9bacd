// Package yahoo implements the quote source over the Yahoo Finance search and
// chart JSON endpoints.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"MarketClose/internal/domain/models"
	xhttp "MarketClose/pkg/http"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; marketclose/1.0)"

// Client implements repository.QuoteSource.
type Client struct {
	searchURL string
	chartURL  string
	attempts  int
	client    *xhttp.Client
}

type Option func(*Client)

// WithAttempts retries rate-limited and 5xx responses.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.client = hc }
}

func New(searchURL, chartURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		searchURL: searchURL,
		chartURL:  chartURL,
		attempts:  2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent(defaultUserAgent))
	}
	return c
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search returns Yahoo symbols for text. Matches whose quote type fits the
// asset class come first; the relative order of Yahoo's ranking is kept.
func (c *Client) Search(ctx context.Context, text string, class models.AssetClass) ([]models.Match, error) {
	var resp searchResponse
	err := c.getJSON(ctx, c.searchURL, map[string][]string{
		"q":           {text},
		"quotesCount": {"5"},
		"newsCount":   {"0"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}

	var fit, rest []models.Match
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		m := models.Match{Key: q.Symbol, Name: name, Class: class}
		if fitsClass(q.QuoteType, class) {
			fit = append(fit, m)
		} else {
			rest = append(rest, m)
		}
	}
	return append(fit, rest...), nil
}

func fitsClass(quoteType string, class models.AssetClass) bool {
	switch class {
	case models.Bonds, models.Indices:
		return quoteType == "INDEX"
	case models.Commodities:
		return quoteType == "FUTURE"
	default:
		return false
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns daily closes dated in the exchange's local calendar. The
// upper bound is inclusive; null closes are skipped.
func (c *Client) History(ctx context.Context, m models.Match, from, to time.Time) ([]models.Bar, error) {
	var resp chartResponse
	err := c.getJSON(ctx, c.chartURL+"/"+url.PathEscape(m.Key), map[string][]string{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10)},
		"interval": {"1d"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", m.Key, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart %s: %s: %s", m.Key, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := res.Indicators.Quote[0].Close

	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		bars = append(bars, models.Bar{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}
	return bars, nil
}

func (c *Client) getJSON(ctx context.Context, u string, params map[string][]string, dest interface{}) error {
	var err error
	for i := 1; i <= c.attempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         u,
			QueryParams: params,
		}, dest)
		if err == nil || !retryable(err) || i == c.attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"MarketClose/internal/domain/models"
)

var targetDate = time.Date(2022, 5, 12, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeSource answers searches with the search text itself and serves bars
// per search key.
type fakeSource struct {
	mu        sync.Mutex
	bars      map[string][]models.Bar
	searchErr map[string]error
	extra     map[string][]models.Match
	delay     map[string]time.Duration
	windows   []([2]time.Time)
	histories []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		bars:      map[string][]models.Bar{},
		searchErr: map[string]error{},
		extra:     map[string][]models.Match{},
		delay:     map[string]time.Duration{},
	}
}

// close registers a close on the target date for a search key.
func (f *fakeSource) close(key, value string) *fakeSource {
	f.bars[key] = []models.Bar{{Date: targetDate, Close: dec(value)}}
	return f
}

func (f *fakeSource) Search(ctx context.Context, text string, _ models.AssetClass) ([]models.Match, error) {
	if d := f.delay[text]; d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
	if err := f.searchErr[text]; err != nil {
		return nil, err
	}
	if _, ok := f.bars[text]; !ok {
		return nil, nil
	}
	return append([]models.Match{{Key: text, Name: text}}, f.extra[text]...), nil
}

func (f *fakeSource) History(_ context.Context, m models.Match, from, to time.Time) ([]models.Bar, error) {
	f.mu.Lock()
	f.windows = append(f.windows, [2]time.Time{from, to})
	f.histories = append(f.histories, m.Key)
	f.mu.Unlock()
	return f.bars[m.Key], nil
}

type fakeMetrics struct {
	mu         sync.Mutex
	quotes     map[string]int
	errs       map[string]int
	deliveries map[string]int
	rows       int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{quotes: map[string]int{}, errs: map[string]int{}, deliveries: map[string]int{}}
}

func (m *fakeMetrics) RecordQuote(class models.AssetClass, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[string(class)+"/"+outcome]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordReportRows(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = n
}

func (m *fakeMetrics) RecordDelivery(channel, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[channel+"/"+result]++
}

type countingRenderer struct {
	calls int
	body  string
}

func (r *countingRenderer) Render(models.Report) ([]byte, error) {
	r.calls++
	return []byte(r.body), nil
}

type memArtifacts struct {
	text, sheet []byte
	saves       int
}

func (a *memArtifacts) SaveText(_ context.Context, b []byte) (string, error) {
	a.saves++
	a.text = b
	return "data/market_close.txt", nil
}

func (a *memArtifacts) SaveSpreadsheet(_ context.Context, b []byte) (string, error) {
	a.saves++
	a.sheet = b
	return "data/market_close.xlsx", nil
}

func (a *memArtifacts) OpenText(context.Context) (io.ReadCloser, error) {
	if a.text == nil {
		return nil, models.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(a.text)), nil
}

type memReportCache struct{ latest *models.Report }

func (c *memReportCache) SaveLatest(_ context.Context, r models.Report) error {
	c.latest = &r
	return nil
}

func (c *memReportCache) Latest(context.Context) (models.Report, error) {
	if c.latest == nil {
		return models.Report{}, models.ErrNotFound
	}
	return *c.latest, nil
}

type fakeMailer struct {
	sent []models.Mail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, mail models.Mail) error {
	m.sent = append(m.sent, mail)
	return m.err
}

type fakeMessenger struct {
	mu    sync.Mutex
	texts map[string][]string
	fail  map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{texts: map[string][]string{}, fail: map[string]bool{}}
}

func (m *fakeMessenger) SendText(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[chatID] {
		return errors.New("chat not found")
	}
	m.texts[chatID] = append(m.texts[chatID], text)
	return nil
}

func (m *fakeMessenger) SendDocument(context.Context, string, string, io.Reader) error {
	return nil
}

type fakeSubscribers struct{ ids []string }

func (s *fakeSubscribers) Add(_ context.Context, id string) (bool, error) {
	for _, x := range s.ids {
		if x == id {
			return false, nil
		}
	}
	s.ids = append(s.ids, id)
	return true, nil
}

func (s *fakeSubscribers) ListAll(context.Context) ([]string, error) {
	return append([]string(nil), s.ids...), nil
}

type fakePublisher struct {
	published []models.Report
	err       error
}

func (p *fakePublisher) PublishReport(_ context.Context, r models.Report) error {
	p.published = append(p.published, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

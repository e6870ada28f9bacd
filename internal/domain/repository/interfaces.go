package repository

import (
	"context"
	"io"
	"time"

	"MarketClose/internal/domain/models"
)

// QuoteSource is the external market-data collaborator.
type QuoteSource interface {
	// Search returns candidate matches for the text, best match first.
	Search(ctx context.Context, text string, class models.AssetClass) ([]models.Match, error)
	// History returns dated closes for the match within [from, to].
	History(ctx context.Context, m models.Match, from, to time.Time) ([]models.Bar, error)
}

// SubscriberRepository is the append-only allow-list of broadcast endpoints.
type SubscriberRepository interface {
	// Add registers id on first contact; added is false when it was already known.
	Add(ctx context.Context, id string) (added bool, err error)
	// ListAll returns every id in first-contact order.
	ListAll(ctx context.Context) ([]string, error)
}

// ArtifactStore keeps the most recent rendered artifacts, overwritten each run.
type ArtifactStore interface {
	SaveText(ctx context.Context, b []byte) (path string, err error)
	SaveSpreadsheet(ctx context.Context, b []byte) (path string, err error)
	OpenText(ctx context.Context) (io.ReadCloser, error)
}

// ReportCache keeps the latest assembled report.
type ReportCache interface {
	SaveLatest(ctx context.Context, r models.Report) error
	Latest(ctx context.Context) (models.Report, error)
}

// Mailer sends a single mail in one attempt.
type Mailer interface {
	Send(ctx context.Context, m models.Mail) error
}

// Messenger delivers text and documents to message-channel endpoints.
type Messenger interface {
	SendText(ctx context.Context, chatID, text string) error
	SendDocument(ctx context.Context, chatID, name string, r io.Reader) error
}

// ReportPublisher announces a finished report on an event stream.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r models.Report) error
	Close() error
}

// Metrics records pipeline and delivery measurements.
type Metrics interface {
	RecordQuote(class models.AssetClass, outcome string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordReportRows(n int)
	RecordDelivery(channel, result string)
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"MarketClose/internal/domain/models"
	"MarketClose/internal/domain/repository"
	pkgkafka "MarketClose/pkg/kafka"
	"MarketClose/pkg/util"
)

// ReportEvent is the message published for every finished report.
type ReportEvent struct {
	EventID   string           `json:"event_id"`
	Date      string           `json:"date"`
	CreatedAt time.Time        `json:"created_at"`
	Rows      []ReportEventRow `json:"rows"`
}

type ReportEventRow struct {
	Group  string          `json:"group"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Close  decimal.Decimal `json:"close"`
}

// KafkaReportPublisher publishes report events keyed by ddmmyy.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	now      func() time.Time
}

func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) repository.ReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, r models.Report) error {
	key := util.DateKey(r.Date)
	return p.producer.Publish(ctx, p.topic, []byte(key), NewReportEvent(r, p.now()))
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func NewReportEvent(r models.Report, now time.Time) ReportEvent {
	rows := make([]ReportEventRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = ReportEventRow{Group: row.Group, Symbol: row.Symbol, Name: row.Name, Close: row.Close}
	}
	return ReportEvent{
		EventID:   uuid.NewString(),
		Date:      util.DateKey(r.Date),
		CreatedAt: now.UTC(),
		Rows:      rows,
	}
}

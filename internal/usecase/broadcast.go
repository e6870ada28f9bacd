package usecase

import (
	"context"
	"fmt"

	"MarketClose/internal/domain/models"
	drepo "MarketClose/internal/domain/repository"
	"MarketClose/pkg/logger"
)

const (
	ChannelMail     = "mail"
	ChannelTelegram = "telegram"
	ChannelKafka    = "kafka"

	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Broadcaster sends the fixed notification to every subscriber.
type Broadcaster struct {
	messenger   drepo.Messenger
	subscribers drepo.SubscriberRepository
	text        string
	metrics     drepo.Metrics
	logger      *logger.Logger
}

func NewBroadcaster(messenger drepo.Messenger, subscribers drepo.SubscriberRepository, text string, metrics drepo.Metrics, l *logger.Logger) *Broadcaster {
	return &Broadcaster{
		messenger:   messenger,
		subscribers: subscribers,
		text:        text,
		metrics:     metrics,
		logger:      l.Component("broadcast"),
	}
}

// Broadcast delivers to each subscriber independently. The error is only
// set when the subscriber list itself cannot be read.
func (b *Broadcaster) Broadcast(ctx context.Context) ([]models.Delivery, error) {
	ids, err := b.subscribers.ListAll(ctx)
	if err != nil {
		b.metrics.RecordError("subscribers")
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	out := make([]models.Delivery, 0, len(ids))
	for _, id := range ids {
		d := models.Delivery{Channel: ChannelTelegram, Recipient: id}
		if err := b.messenger.SendText(ctx, id, b.text); err != nil {
			d.Err = err
			b.metrics.RecordDelivery(ChannelTelegram, ResultFailed)
			b.logger.Warn("broadcast failed", logger.String("chat_id", id), logger.Error(err))
		} else {
			b.metrics.RecordDelivery(ChannelTelegram, ResultOK)
		}
		out = append(out, d)
	}

	b.logger.Info("broadcast done", logger.Int("recipients", len(ids)))
	return out, nil
}

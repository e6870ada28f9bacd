package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
	"MarketClose/pkg/logger"
)

type pipeline struct {
	src         *fakeSource
	metrics     *fakeMetrics
	text, sheet *countingRenderer
	artifacts   *memArtifacts
	cache       *memReportCache
	mailer      *fakeMailer
	messenger   *fakeMessenger
	subscribers *fakeSubscribers
	publisher   *fakePublisher
	uc          *MarketClose
}

func newPipeline(src *fakeSource) *pipeline {
	p := &pipeline{
		src:         src,
		metrics:     newFakeMetrics(),
		text:        &countingRenderer{body: "table"},
		sheet:       &countingRenderer{body: "xlsx"},
		artifacts:   &memArtifacts{},
		cache:       &memReportCache{},
		mailer:      &fakeMailer{},
		messenger:   newFakeMessenger(),
		subscribers: &fakeSubscribers{ids: []string{"100", "200", "300"}},
		publisher:   &fakePublisher{},
	}
	cat := catalog.Default(nil)
	l := logger.Nop()
	p.uc = NewMarketClose(cat,
		NewQuoteResolver(src, p.metrics, l),
		NewReportAssembler(cat),
		p.text, p.sheet, p.artifacts, p.metrics, l,
		WithReportCache(p.cache),
		WithMailer(p.mailer, MailSettings{
			From:     "bot@example.com",
			FromName: "Market Close",
			To:       []string{"desk@example.com"},
			Cc:       []string{"boss@example.com"},
			Body:     "--\nBest regards",
		}),
		WithBroadcaster(NewBroadcaster(p.messenger, p.subscribers, "ready", p.metrics, l)),
		WithPublisher(p.publisher),
	)
	return p
}

func TestBuild_ScenarioA(t *testing.T) {
	src := newFakeSource().
		close("us1y", "2.10").close("us2y", "2.50").close("us3y", "2.60").close("us5y", "2.80").
		close("us7y", "2.90").close("us10y", "3.00").close("us20y", "3.40").close("us30y", "3.30")
	p := newPipeline(src)

	r, err := p.uc.Build(context.Background(), targetDate)
	require.NoError(t, err)
	require.Len(t, r.Rows, 10)
	assert.Equal(t, "10-2", r.Rows[8].Name)
	assert.True(t, r.Rows[8].Close.Equal(dec("0.50")))
	assert.Equal(t, "20-5", r.Rows[9].Name)
	assert.True(t, r.Rows[9].Close.Equal(dec("0.60")))
	assert.Equal(t, 10, p.metrics.rows)
	assert.Equal(t, 8, p.metrics.quotes["bonds/resolved"])
}

func TestRun_ScenarioC_EmptyReportSkipsEverything(t *testing.T) {
	p := newPipeline(newFakeSource())

	res, err := p.uc.Run(context.Background(), models.ReportRequest{Date: targetDate, Send: true})
	assert.ErrorIs(t, err, models.ErrEmptyReport)
	assert.True(t, IsEmpty(err))
	assert.True(t, res.Report.Empty())

	assert.Zero(t, p.text.calls)
	assert.Zero(t, p.sheet.calls)
	assert.Zero(t, p.artifacts.saves)
	assert.Empty(t, p.mailer.sent)
	assert.Empty(t, p.messenger.texts)
	assert.Empty(t, p.publisher.published)
	assert.Nil(t, p.cache.latest)
	assert.Equal(t, 1, p.metrics.errs["empty_report"])
}

func TestRun_FullDistribution(t *testing.T) {
	p := newPipeline(newFakeSource().close("S&P 500", "4100.25").close("Gold", "1950.10"))

	res, err := p.uc.Run(context.Background(), models.ReportRequest{Date: targetDate, Send: true})
	require.NoError(t, err)

	assert.Equal(t, "data/market_close.txt", res.TextPath)
	assert.Equal(t, "data/market_close.xlsx", res.SheetPath)
	assert.Equal(t, []byte("table"), p.artifacts.text)
	assert.Equal(t, []byte("xlsx"), p.artifacts.sheet)
	require.NotNil(t, p.cache.latest)
	assert.Len(t, p.cache.latest.Rows, 2)

	require.Len(t, p.mailer.sent, 1)
	mail := p.mailer.sent[0]
	assert.Equal(t, "market close on 12/05/2022", mail.Subject)
	assert.Equal(t, []string{"desk@example.com"}, mail.To)
	assert.Equal(t, []string{"boss@example.com"}, mail.Cc)
	assert.Equal(t, "Market Close", mail.FromName)
	assert.Equal(t, SheetAttachmentName, mail.Attachment.Name)
	assert.Equal(t, []byte("xlsx"), mail.Attachment.Data)

	for _, id := range []string{"100", "200", "300"} {
		assert.Equal(t, []string{"ready"}, p.messenger.texts[id])
	}
	assert.Len(t, p.publisher.published, 1)
	assert.Len(t, res.Deliveries, 5)
	assert.Empty(t, res.Failed())
}

func TestRun_NoSendOnlyStoresAndPublishes(t *testing.T) {
	p := newPipeline(newFakeSource().close("Gold", "1950.10"))

	res, err := p.uc.Run(context.Background(), models.ReportRequest{Date: targetDate})
	require.NoError(t, err)
	assert.Equal(t, 2, p.artifacts.saves)
	assert.Empty(t, p.mailer.sent)
	assert.Empty(t, p.messenger.texts)
	assert.Len(t, p.publisher.published, 1)
	assert.Len(t, res.Deliveries, 1)
}

func TestRun_MailFailureDoesNotBlockBroadcast(t *testing.T) {
	p := newPipeline(newFakeSource().close("Gold", "1950.10"))
	p.mailer.err = errors.New("535 auth failed")
	p.messenger.fail["200"] = true
	p.publisher.err = errors.New("broker down")

	res, err := p.uc.Run(context.Background(), models.ReportRequest{Date: targetDate, Send: true})
	require.NoError(t, err)

	assert.Len(t, p.mailer.sent, 1)
	assert.Equal(t, []string{"ready"}, p.messenger.texts["100"])
	assert.Equal(t, []string{"ready"}, p.messenger.texts["300"])

	failed := res.Failed()
	require.Len(t, failed, 3)
	assert.Equal(t, ChannelMail, failed[0].Channel)
	assert.Equal(t, ChannelTelegram, failed[1].Channel)
	assert.Equal(t, "200", failed[1].Recipient)
	assert.Equal(t, ChannelKafka, failed[2].Channel)

	assert.Equal(t, 1, p.metrics.deliveries["mail/failed"])
	assert.Equal(t, 2, p.metrics.deliveries["telegram/ok"])
	assert.Equal(t, 1, p.metrics.deliveries["telegram/failed"])
	assert.Equal(t, 2, p.artifacts.saves)
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/models"
	drepo "MarketClose/internal/domain/repository"
	"MarketClose/internal/domain/service"
	"MarketClose/pkg/logger"
	"MarketClose/pkg/util"
)

// SheetAttachmentName is the file name of the mailed workbook.
const SheetAttachmentName = "market_close.xlsx"

// MailSettings holds the fixed parts of the report mail.
type MailSettings struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Body     string
}

// MarketClose runs the daily pipeline: resolve, derive, assemble, render,
// store and distribute.
type MarketClose struct {
	cat       *catalog.Catalog
	resolver  *QuoteResolver
	assembler *ReportAssembler
	text      service.ReportRenderer
	sheet     service.ReportRenderer
	artifacts drepo.ArtifactStore
	metrics   drepo.Metrics
	logger    *logger.Logger

	cache       drepo.ReportCache
	mailer      drepo.Mailer
	mail        MailSettings
	broadcaster *Broadcaster
	publisher   drepo.ReportPublisher
}

type MarketCloseOption func(*MarketClose)

// WithReportCache keeps the latest report for the HTTP API.
func WithReportCache(c drepo.ReportCache) MarketCloseOption {
	return func(m *MarketClose) { m.cache = c }
}

// WithMailer enables the mail channel.
func WithMailer(mailer drepo.Mailer, settings MailSettings) MarketCloseOption {
	return func(m *MarketClose) {
		m.mailer = mailer
		m.mail = settings
	}
}

// WithBroadcaster enables the subscriber notification channel.
func WithBroadcaster(b *Broadcaster) MarketCloseOption {
	return func(m *MarketClose) { m.broadcaster = b }
}

// WithPublisher announces every stored report on an event stream.
func WithPublisher(p drepo.ReportPublisher) MarketCloseOption {
	return func(m *MarketClose) { m.publisher = p }
}

func NewMarketClose(
	cat *catalog.Catalog,
	resolver *QuoteResolver,
	assembler *ReportAssembler,
	text service.ReportRenderer,
	sheet service.ReportRenderer,
	artifacts drepo.ArtifactStore,
	metrics drepo.Metrics,
	l *logger.Logger,
	opts ...MarketCloseOption,
) *MarketClose {
	m := &MarketClose{
		cat:       cat,
		resolver:  resolver,
		assembler: assembler,
		text:      text,
		sheet:     sheet,
		artifacts: artifacts,
		metrics:   metrics,
		logger:    l.Component("market_close"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build runs the core pipeline only. It returns models.ErrEmptyReport when
// no instrument resolved.
func (m *MarketClose) Build(ctx context.Context, date time.Time) (models.Report, error) {
	start := time.Now()
	date = util.TruncateDay(date)

	resolutions := m.resolver.ResolveAll(ctx, m.cat.All(), date)
	resolved := Fold(resolutions)
	spreads := DeriveSpreads(resolved.Book, m.cat.Spreads())

	report, err := m.assembler.Assemble(date, resolved.ByClass, spreads)
	m.metrics.RecordLatency("build", time.Since(start).Seconds())
	m.metrics.RecordReportRows(len(report.Rows))

	missing := make([]string, len(resolved.Missing))
	for i, in := range resolved.Missing {
		missing[i] = in.Symbol
	}
	m.logger.Info("report assembled",
		logger.Date("date", date),
		logger.Int("resolved", len(resolved.Book)),
		logger.Int("spreads", len(spreads)),
		logger.Int("rows", len(report.Rows)),
		logger.Strings("missing", missing))

	if err != nil {
		m.metrics.RecordError("empty_report")
		return report, err
	}
	return report, nil
}

// Run builds the report, stores both artifacts and, when requested,
// distributes them. Distribution failures are reported in the result and
// never returned as errors.
func (m *MarketClose) Run(ctx context.Context, req models.ReportRequest) (models.RunResult, error) {
	report, err := m.Build(ctx, req.Date)
	if err != nil {
		return models.RunResult{Report: report}, err
	}

	textBody, err := m.text.Render(report)
	if err != nil {
		m.metrics.RecordError("render")
		return models.RunResult{Report: report}, fmt.Errorf("render text: %w", err)
	}
	sheetBody, err := m.sheet.Render(report)
	if err != nil {
		m.metrics.RecordError("render")
		return models.RunResult{Report: report}, fmt.Errorf("render sheet: %w", err)
	}

	res := models.RunResult{Report: report}
	if res.TextPath, err = m.artifacts.SaveText(ctx, textBody); err != nil {
		m.metrics.RecordError("artifact")
		return res, fmt.Errorf("save text: %w", err)
	}
	if res.SheetPath, err = m.artifacts.SaveSpreadsheet(ctx, sheetBody); err != nil {
		m.metrics.RecordError("artifact")
		return res, fmt.Errorf("save spreadsheet: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.SaveLatest(ctx, report); err != nil {
			m.metrics.RecordError("cache")
			m.logger.Warn("cache latest report failed", logger.Error(err))
		}
	}

	if req.Send {
		res.Deliveries = append(res.Deliveries, m.sendMail(ctx, report, sheetBody)...)
		res.Deliveries = append(res.Deliveries, m.broadcast(ctx)...)
	}
	res.Deliveries = append(res.Deliveries, m.publish(ctx, report)...)

	m.logger.Info("report run finished",
		logger.Date("date", report.Date),
		logger.Bool("send", req.Send),
		logger.Int("deliveries", len(res.Deliveries)),
		logger.Int("failed", len(res.Failed())))
	return res, nil
}

// MailFor builds the report mail for the configured recipients.
func (m *MarketClose) MailFor(report models.Report, sheet []byte) models.Mail {
	return models.Mail{
		Subject:    "market close on " + util.DisplayDate(report.Date),
		Body:       m.mail.Body,
		From:       m.mail.From,
		FromName:   m.mail.FromName,
		To:         m.mail.To,
		Cc:         m.mail.Cc,
		Attachment: models.Attachment{Name: SheetAttachmentName, Data: bytes.Clone(sheet)},
	}
}

func (m *MarketClose) sendMail(ctx context.Context, report models.Report, sheet []byte) []models.Delivery {
	if m.mailer == nil {
		return nil
	}
	msg := m.MailFor(report, sheet)
	d := models.Delivery{Channel: ChannelMail, Recipient: strings.Join(msg.To, ",")}

	start := time.Now()
	err := m.mailer.Send(ctx, msg)
	m.metrics.RecordLatency("mail", time.Since(start).Seconds())
	if err != nil {
		d.Err = err
		m.metrics.RecordDelivery(ChannelMail, ResultFailed)
		m.logger.Error("mail failed", logger.Strings("to", msg.To), logger.Error(err))
	} else {
		m.metrics.RecordDelivery(ChannelMail, ResultOK)
		m.logger.Info("mail sent", logger.Strings("to", msg.To), logger.Strings("cc", msg.Cc))
	}
	return []models.Delivery{d}
}

func (m *MarketClose) broadcast(ctx context.Context) []models.Delivery {
	if m.broadcaster == nil {
		return nil
	}
	ds, err := m.broadcaster.Broadcast(ctx)
	if err != nil {
		m.logger.Error("broadcast failed", logger.Error(err))
		return []models.Delivery{{Channel: ChannelTelegram, Recipient: "*", Err: err}}
	}
	return ds
}

func (m *MarketClose) publish(ctx context.Context, report models.Report) []models.Delivery {
	if m.publisher == nil {
		return nil
	}
	d := models.Delivery{Channel: ChannelKafka, Recipient: "report"}
	if err := m.publisher.PublishReport(ctx, report); err != nil {
		d.Err = err
		m.metrics.RecordDelivery(ChannelKafka, ResultFailed)
		m.logger.Warn("publish report failed", logger.Error(err))
	} else {
		m.metrics.RecordDelivery(ChannelKafka, ResultOK)
	}
	return []models.Delivery{d}
}

// IsEmpty reports whether err means the date had no market data at all.
func IsEmpty(err error) bool { return errors.Is(err, models.ErrEmptyReport) }

package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"MarketClose/internal/catalog"
	"MarketClose/internal/domain/repository"
	"MarketClose/internal/handler/api"
	"MarketClose/internal/handler/bot"
	"MarketClose/internal/render"
	internalrepo "MarketClose/internal/repository"
	"MarketClose/internal/service/financego"
	"MarketClose/internal/service/mailer"
	"MarketClose/internal/service/ratelimit"
	"MarketClose/internal/service/telegram"
	"MarketClose/internal/service/yahoo"
	"MarketClose/internal/usecase"
	"MarketClose/pkg/cache"
	pkgch "MarketClose/pkg/clickhouse"
	"MarketClose/pkg/config"
	xhttp "MarketClose/pkg/http"
	pkgkafka "MarketClose/pkg/kafka"
	"MarketClose/pkg/logger"
	"MarketClose/pkg/metrics"
	"MarketClose/pkg/queue"
	"MarketClose/pkg/server"
)

// Renderers groups the two artifact renderers of a run.
type Renderers struct {
	Text  *render.Text
	Sheet *render.Sheet
}

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates a private registry with the Go runtime collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideRedisClient connects to Redis when any backend needs it.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.UsesRedis() {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideClickHouseClient opens ClickHouse only for the warehouse quote provider.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Quotes.Provider != "clickhouse" {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideQuoteSource selects the market data provider.
func ProvideQuoteSource(cfg *config.Config, ch *pkgch.Client) (repository.QuoteSource, error) {
	switch cfg.Quotes.Provider {
	case "yahoo":
		return yahoo.New(cfg.Quotes.SearchURL, cfg.Quotes.ChartURL, cfg.Quotes.Timeout), nil
	case "financego":
		return financego.New(), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("clickhouse quote provider without a client")
		}
		return internalrepo.NewClickHouseQuotes(ch.DB(), cfg.Quotes.Table), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Quotes.Provider)
	}
}

func ProvideCatalog(cfg *config.Config) *catalog.Catalog {
	return catalog.Default(cfg.Quotes.SearchKeys)
}

func ProvideQuoteResolver(src repository.QuoteSource, m repository.Metrics, cfg *config.Config, l *logger.Logger) *usecase.QuoteResolver {
	return usecase.NewQuoteResolver(src, m, l,
		usecase.WithCallTimeout(cfg.Quotes.Timeout),
		usecase.WithWorkers(cfg.Quotes.Workers),
	)
}

func ProvideReportAssembler(cat *catalog.Catalog) *usecase.ReportAssembler {
	return usecase.NewReportAssembler(cat)
}

func ProvideRenderers() Renderers {
	return Renderers{Text: render.NewText(), Sheet: render.NewSheet()}
}

// ProvideCache selects the memory or Redis cache backend.
func ProvideCache(cfg *config.Config, client *redis.Client) (cache.Service, func()) {
	opts := []cache.Option{cache.WithPrefix(cfg.Redis.Prefix), cache.WithDefaultTTL(cfg.Cache.TTL)}
	var c cache.Service
	if cfg.Cache.Backend == "redis" {
		c = cache.NewRedisCache(client, opts...)
	} else {
		c = cache.NewMemoryCache(opts...)
	}
	return c, func() { _ = c.Close() }
}

func ProvideReportCache(c cache.Service, cfg *config.Config) repository.ReportCache {
	return internalrepo.NewCachedReports(c, cfg.Cache.TTL)
}

// ProvideSubscribers selects the file or Redis subscriber store.
func ProvideSubscribers(cfg *config.Config, client *redis.Client) repository.SubscriberRepository {
	if cfg.Subscribers.Backend == "redis" {
		return internalrepo.NewRedisSubscribers(client, cfg.Redis.Prefix+":"+cfg.Subscribers.Key)
	}
	path := cfg.Subscribers.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Data.Dir, path)
	}
	return internalrepo.NewFileSubscribers(path)
}

func ProvideArtifacts(cfg *config.Config) repository.ArtifactStore {
	return internalrepo.NewFSArtifacts(cfg.Data.Dir, cfg.Data.TextFile, cfg.Data.SpreadsheetFile)
}

// ProvideTelegramClient returns nil when the bot is disabled.
func ProvideTelegramClient(cfg *config.Config) *telegram.Client {
	if !cfg.Telegram.Enabled {
		return nil
	}
	var opts []telegram.Option
	if cfg.Telegram.Mode == "polling" {
		opts = append(opts, telegram.WithPollTimeout(cfg.Telegram.PollInterval))
	}
	return telegram.New(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.Timeout, opts...)
}

func ProvideMessenger(tg *telegram.Client) repository.Messenger {
	if tg == nil {
		return nil
	}
	return tg
}

func ProvideMailer(cfg *config.Config) repository.Mailer {
	if !cfg.Mail.Enabled {
		return nil
	}
	return mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.Timeout,
	})
}

// ProvideReportPublisher creates the Kafka publisher when enabled.
func ProvideReportPublisher(cfg *config.Config, reg *prometheus.Registry) (repository.ReportPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideMarketClose assembles the pipeline with every enabled channel.
func ProvideMarketClose(
	cfg *config.Config,
	cat *catalog.Catalog,
	resolver *usecase.QuoteResolver,
	assembler *usecase.ReportAssembler,
	renderers Renderers,
	artifacts repository.ArtifactStore,
	reports repository.ReportCache,
	subscribers repository.SubscriberRepository,
	messenger repository.Messenger,
	mail repository.Mailer,
	publisher repository.ReportPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.MarketClose {
	opts := []usecase.MarketCloseOption{usecase.WithReportCache(reports)}
	if mail != nil {
		opts = append(opts, usecase.WithMailer(mail, usecase.MailSettings{
			From:     cfg.Mail.Sender,
			FromName: cfg.Mail.SenderName,
			To:       cfg.Mail.Recipients(),
			Cc:       cfg.Mail.Cc,
			Body:     cfg.Mail.Body,
		}))
	}
	if messenger != nil {
		opts = append(opts, usecase.WithBroadcaster(
			usecase.NewBroadcaster(messenger, subscribers, cfg.Telegram.Notification, m, l)))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	return usecase.NewMarketClose(cat, resolver, assembler, renderers.Text, renderers.Sheet, artifacts, m, l, opts...)
}

func ProvideReportJob(cfg *config.Config, mc *usecase.MarketClose, messenger repository.Messenger, c cache.Service, l *logger.Logger) *usecase.ReportJob {
	opts := []usecase.ReportJobOption{
		usecase.WithRunLock(c),
		usecase.WithRunTimeout(cfg.Queue.RunTimeout),
	}
	if messenger != nil {
		opts = append(opts, usecase.WithNotifier(messenger))
	}
	return usecase.NewReportJob(mc, l, opts...)
}

// ProvideQueue selects the in-process or Redis job queue.
func ProvideQueue(cfg *config.Config, client *redis.Client, job *usecase.ReportJob, l *logger.Logger) queue.Queue {
	qc := queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	var q queue.Queue
	if cfg.Queue.Backend == "redis" {
		q = queue.NewRedisQueue(l, qc, client, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	} else {
		q = queue.NewMemoryQueue(l, qc)
	}
	q.RegisterJob(job)
	return q
}

func ProvideDispatcher(q queue.Queue) usecase.Dispatcher {
	return usecase.NewQueueDispatcher(q)
}

// ProvideBot returns nil when the bot is disabled.
func ProvideBot(
	cfg *config.Config,
	messenger repository.Messenger,
	subscribers repository.SubscriberRepository,
	dispatcher usecase.Dispatcher,
	artifacts repository.ArtifactStore,
	l *logger.Logger,
) *bot.Bot {
	if messenger == nil {
		return nil
	}
	return bot.New(messenger, subscribers, dispatcher, artifacts, l, bot.WithAllowedChats(cfg.Telegram.AllowedChats))
}

// ProvideHTTPServer builds the API server, or nil when it is disabled.
func ProvideHTTPServer(
	cfg *config.Config,
	l *logger.Logger,
	reg *prometheus.Registry,
	mc *usecase.MarketClose,
	renderers Renderers,
	reports repository.ReportCache,
	subscribers repository.SubscriberRepository,
	dispatcher usecase.Dispatcher,
	b *bot.Bot,
) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	handlers := []xhttp.Handler{
		api.NewReportHandler(l, mc, renderers.Text, reports, subscribers, dispatcher,
			ratelimit.New(cfg.Server.RunBurst, cfg.Server.RunsPerMinute)),
	}
	if b != nil && cfg.Telegram.Mode == "webhook" {
		handlers = append(handlers, bot.NewWebhookHandler(b, cfg.Telegram.WebhookPath))
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	q queue.Queue,
	job *usecase.ReportJob,
	srv *xhttp.Server,
	b *bot.Bot,
	tg *telegram.Client,
) *server.App {
	var opts []server.Option
	if srv != nil {
		opts = append(opts, server.WithHTTPServer(srv))
	}
	if b != nil && tg != nil && cfg.Telegram.Mode == "polling" {
		opts = append(opts, server.WithPolling(b, tg))
	}
	return server.New(cfg, l, q, job, opts...)
}

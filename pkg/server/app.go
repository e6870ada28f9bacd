package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketClose/internal/domain/models"
	"MarketClose/internal/handler/bot"
	"MarketClose/internal/usecase"
	"MarketClose/pkg/config"
	xhttp "MarketClose/pkg/http"
	applogger "MarketClose/pkg/logger"
	"MarketClose/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	queue      queue.Queue
	job        *usecase.ReportJob
	httpServer *xhttp.Server
	bot        *bot.Bot
	updates    bot.UpdateSource
}

// Option attaches an optional surface to the app.
type Option func(*App)

// WithHTTPServer serves the API, metrics and webhook while the app runs.
func WithHTTPServer(s *xhttp.Server) Option {
	return func(a *App) { a.httpServer = s }
}

// WithPolling long-polls Telegram updates into b while the app runs.
func WithPolling(b *bot.Bot, src bot.UpdateSource) Option {
	return func(a *App) {
		a.bot = b
		a.updates = src
	}
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, q queue.Queue, job *usecase.ReportJob, opts ...Option) *App {
	a := &App{cfg: cfg, logger: l.Component("app"), queue: q, job: job}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Serve starts the queue workers, the HTTP server and the bot poller, then
// blocks until ctx is cancelled and shuts everything down.
func (a *App) Serve(ctx context.Context) error {
	if err := a.queue.Start(); err != nil {
		return fmt.Errorf("start queue: %w", err)
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("start http: %w", err)
		}
	}

	var wg sync.WaitGroup
	if a.bot != nil && a.updates != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.bot.Poll(ctx, a.updates, a.cfg.Telegram.PollInterval)
		}()
	}

	a.logger.Info("market close service started",
		applogger.String("environment", a.cfg.Environment),
		applogger.String("provider", a.cfg.Quotes.Provider),
		applogger.String("queue", a.cfg.Queue.Backend),
		applogger.Bool("http", a.httpServer != nil),
		applogger.Bool("polling", a.updates != nil))

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	wg.Wait()
	return a.shutdown()
}

// RunOnce executes a single report run in the calling goroutine.
func (a *App) RunOnce(ctx context.Context, req models.ReportRequest) (models.RunResult, error) {
	return a.job.Execute(ctx, req)
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if err := a.queue.Stop(ctx); err != nil {
		a.logger.Warn("queue stop error", applogger.Error(err))
		errs = append(errs, err)
	}
	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

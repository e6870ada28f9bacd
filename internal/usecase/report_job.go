package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketClose/internal/domain/models"
	drepo "MarketClose/internal/domain/repository"
	"MarketClose/pkg/cache"
	"MarketClose/pkg/logger"
	"MarketClose/pkg/queue"
	"MarketClose/pkg/util"
)

// ReportJobType is the queue message type of a full report run.
const ReportJobType = "market_close.run"

// ReportPayload is the queued form of a models.ReportRequest.
type ReportPayload struct {
	Date        string `json:"date"`
	RequestedBy string `json:"requested_by,omitempty"`
	Send        bool   `json:"send"`
}

// Runner is the part of MarketClose a queued job needs.
type Runner interface {
	Run(ctx context.Context, req models.ReportRequest) (models.RunResult, error)
}

// ReportJob executes queued report runs, one per date at a time.
type ReportJob struct {
	runner   Runner
	notifier drepo.Messenger
	locks    cache.Service
	timeout  time.Duration
	logger   *logger.Logger
}

type ReportJobOption func(*ReportJob)

// WithNotifier tells the requesting chat when a date has no data.
func WithNotifier(m drepo.Messenger) ReportJobOption {
	return func(j *ReportJob) { j.notifier = m }
}

// WithRunLock serializes runs of the same date across workers and processes.
func WithRunLock(c cache.Service) ReportJobOption {
	return func(j *ReportJob) { j.locks = c }
}

// WithRunTimeout bounds a whole run.
func WithRunTimeout(d time.Duration) ReportJobOption {
	return func(j *ReportJob) {
		if d > 0 {
			j.timeout = d
		}
	}
}

func NewReportJob(runner Runner, l *logger.Logger, opts ...ReportJobOption) *ReportJob {
	j := &ReportJob{runner: runner, timeout: 5 * time.Minute, logger: l.Component("report_job")}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *ReportJob) Name() string { return "market close report" }
func (j *ReportJob) Type() string { return ReportJobType }

func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ReportPayload](payload)
	if err != nil {
		return err
	}
	date, err := models.ParseReportDate(p.Date)
	if err != nil {
		return err
	}
	_, err = j.Execute(ctx, models.ReportRequest{Date: date, RequestedBy: p.RequestedBy, Send: p.Send})
	return err
}

// Execute runs one request. An empty report is answered to the requester
// and is not an error.
func (j *ReportJob) Execute(ctx context.Context, req models.ReportRequest) (models.RunResult, error) {
	if j.locks != nil {
		key := cache.GenerateKeyWithParams("lock", "run", util.DateKey(req.Date))
		ok, err := j.locks.TryLock(ctx, key, j.timeout)
		if err != nil {
			return models.RunResult{}, fmt.Errorf("run lock: %w", err)
		}
		if !ok {
			j.logger.Warn("run already in progress", logger.Date("date", req.Date))
			j.notify(ctx, req.RequestedBy, fmt.Sprintf("A report for %s is already being prepared.", util.DisplayDate(req.Date)))
			return models.RunResult{}, nil
		}
		defer func() {
			if err := j.locks.Unlock(context.WithoutCancel(ctx), key); err != nil {
				j.logger.Warn("release run lock", logger.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	res, err := j.runner.Run(runCtx, req)
	if IsEmpty(err) {
		j.logger.Warn("no market data", logger.Date("date", req.Date))
		j.notify(ctx, req.RequestedBy, fmt.Sprintf("No market data for %s", util.DisplayDate(req.Date)))
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", util.DateKey(req.Date), err)
	}
	return res, nil
}

func (j *ReportJob) notify(ctx context.Context, chatID, text string) {
	if j.notifier == nil || chatID == "" {
		return
	}
	if err := j.notifier.SendText(ctx, chatID, text); err != nil {
		j.logger.Warn("notify requester failed", logger.String("chat_id", chatID), logger.Error(err))
	}
}

// Dispatcher accepts report requests for asynchronous execution.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.ReportRequest) error
}

// QueueDispatcher enqueues report runs on a job queue.
type QueueDispatcher struct {
	q queue.Queue
}

func NewQueueDispatcher(q queue.Queue) *QueueDispatcher {
	return &QueueDispatcher{q: q}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, req models.ReportRequest) error {
	return d.q.Enqueue(ctx, ReportJobType, ReportPayload{
		Date:        util.DateKey(req.Date),
		RequestedBy: req.RequestedBy,
		Send:        req.Send,
	})
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"MarketClose/internal/domain/models"
	domrepo "MarketClose/internal/domain/repository"
	"MarketClose/internal/domain/service"
	"MarketClose/internal/service/ratelimit"
	"MarketClose/internal/usecase"
	xhttp "MarketClose/pkg/http"
	xlogger "MarketClose/pkg/logger"
	"MarketClose/pkg/util"
)

// ReportBuilder runs the core pipeline without side effects.
type ReportBuilder interface {
	Build(ctx context.Context, date time.Time) (models.Report, error)
}

// ReportHandler serves report previews, the latest report and run requests.
type ReportHandler struct {
	logger      *xlogger.Logger
	builder     ReportBuilder
	text        service.ReportRenderer
	reports     domrepo.ReportCache
	subscribers domrepo.SubscriberRepository
	dispatcher  usecase.Dispatcher
	limiter     *ratelimit.Limiter
}

func NewReportHandler(
	logger *xlogger.Logger,
	builder ReportBuilder,
	text service.ReportRenderer,
	reports domrepo.ReportCache,
	subscribers domrepo.SubscriberRepository,
	dispatcher usecase.Dispatcher,
	limiter *ratelimit.Limiter,
) *ReportHandler {
	return &ReportHandler{
		logger:      logger.Component("api"),
		builder:     builder,
		text:        text,
		reports:     reports,
		subscribers: subscribers,
		dispatcher:  dispatcher,
		limiter:     limiter,
	}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/report/latest", h.Latest)
	g.GET("/report/preview", h.Preview)
	g.POST("/report", h.Enqueue)
	g.GET("/subscribers", h.Subscribers)
}

func (h *ReportHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ReportHandler) Latest(c echo.Context) error {
	rep, err := h.reports.Latest(c.Request().Context())
	if errors.Is(err, models.ErrNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no report has been produced yet"))
	}
	if err != nil {
		h.logger.Error("load latest report", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *ReportHandler) Preview(c echo.Context) error {
	if !h.allow(c) {
		return rateLimited(c)
	}
	req := &models.PreviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := models.ParseReportDate(req.Date)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("date", "date must be a valid ddmmyy day").WithError(err))
	}

	rep, err := h.builder.Build(c.Request().Context(), date)
	if usecase.IsEmpty(err) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no market data for %s", util.DisplayDate(date)))
	}
	if err != nil {
		h.logger.Error("preview build", xlogger.Date("date", date), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	body, err := h.text.Render(rep)
	if err != nil {
		h.logger.Error("preview render", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, models.PreviewResponse{Report: rep, Text: string(body)})
}

// allow throttles the endpoints that reach the quote sources, per client IP.
func (h *ReportHandler) allow(c echo.Context) bool {
	return h.limiter == nil || h.limiter.Allow(c.RealIP())
}

func rateLimited(c echo.Context) error {
	return xhttp.AppErrorResponse(c,
		xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many report requests", http.StatusTooManyRequests))
}

func (h *ReportHandler) Enqueue(c echo.Context) error {
	if !h.allow(c) {
		return rateLimited(c)
	}
	req := &models.EnqueueRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := models.ParseReportDate(req.Date)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("date", "date must be a valid ddmmyy day").WithError(err))
	}

	send := *req.Send
	if err := h.dispatcher.Dispatch(c.Request().Context(), models.ReportRequest{Date: date, Send: send}); err != nil {
		h.logger.Error("dispatch report", xlogger.Date("date", date), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("report queue is unavailable").WithError(err))
	}
	return xhttp.AcceptedResponse(c, models.EnqueueResponse{Date: req.Date, Send: send, Status: "queued"})
}

func (h *ReportHandler) Subscribers(c echo.Context) error {
	ids, err := h.subscribers.ListAll(c.Request().Context())
	if err != nil {
		h.logger.Error("list subscribers", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return xhttp.ListResponse(c, ids, int64(len(ids)))
}

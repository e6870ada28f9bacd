package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"MarketClose/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	quotesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	reportRows  prometheus.Gauge
	deliveries  *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		quotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketclose_quotes_total",
				Help: "Quote lookups by asset class and outcome",
			},
			[]string{"class", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketclose_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketclose_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		reportRows: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketclose_report_rows",
				Help: "Rows in the last assembled report",
			},
		),
		deliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketclose_deliveries_total",
				Help: "Report deliveries by channel and result",
			},
			[]string{"channel", "result"},
		),
	}
}

// RecordQuote counts one resolved or unavailable instrument.
func (r *Recorder) RecordQuote(class models.AssetClass, outcome string) {
	r.quotesTotal.WithLabelValues(string(class), outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordReportRows(n int) {
	r.reportRows.Set(float64(n))
}

func (r *Recorder) RecordDelivery(channel, result string) {
	r.deliveries.WithLabelValues(channel, result).Inc()
}

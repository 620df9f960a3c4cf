package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/addrlink/internal/domain"
)

const namespace = "addrlink"

// Run outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the analyzer's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	FetchFailures prometheus.Counter
	PairScores    *prometheus.CounterVec
	ReportTags    *prometheus.CounterVec
	PublishErrors prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Analysis runs by outcome",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of completed analysis runs",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Addresses analyzed with an empty history after a failed fetch",
		}),
		PairScores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pair_scores_total",
			Help:      "Scored address pairs by score",
		}, []string{"score"}),
		ReportTags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_tags_total",
			Help:      "Tags attached to reports",
		}, []string{"tag"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Reports that could not be published",
		}),
	}
	m.registry.MustRegister(m.Runs, m.RunDuration, m.FetchFailures, m.PairScores, m.ReportTags, m.PublishErrors)
	return m
}

// ObserveReport records a completed run.
func (m *Metrics) ObserveReport(report domain.Report, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(OutcomeOK).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	for _, c := range report.Coverage {
		if c.FetchError != "" {
			m.FetchFailures.Inc()
		}
	}
	for _, p := range report.Pairs {
		m.PairScores.WithLabelValues(strconv.Itoa(p.Score)).Inc()
	}
	for _, tag := range report.Tags {
		m.ReportTags.WithLabelValues(tag).Inc()
	}
}

// ObserveFailure records a run rejected or aborted before a report existed.
func (m *Metrics) ObserveFailure(outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

// ObservePublishError counts a report that failed to publish.
func (m *Metrics) ObservePublishError() {
	if m == nil {
		return
	}
	m.PublishErrors.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

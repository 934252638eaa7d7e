package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// scoring service.
type Metrics struct {
	RequestsHandled *prometheus.CounterVec // labels: type={requestScore,requestForecast,...}
	RequestErrors   prometheus.Counter
	UnknownRequests prometheus.Counter

	RefreshesTotal  prometheus.Counter
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	StaleDiscarded  prometheus.Counter
	ReportsScored   prometheus.Counter

	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
	SessionActive   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsHandled,
		m.RequestErrors,
		m.UnknownRequests,
		m.RefreshesTotal,
		m.RefreshErrors,
		m.RefreshDuration,
		m.StaleDiscarded,
		m.ReportsScored,
		m.EventsPublished,
		m.PublishErrors,
		m.SessionActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "requests_handled_total",
			Help:      "Inbound map-surface requests by type.",
		}, []string{"type"}),
		RequestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "request_errors_total",
			Help:      "Requests that degraded to an empty result.",
		}),
		UnknownRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "unknown_requests_total",
			Help:      "Inbound messages with an unrecognized type, ignored.",
		}),
		RefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "refreshes_total",
			Help:      "Scoreboard refresh passes started.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "refresh_errors_total",
			Help:      "Refresh passes that hit a collaborator failure.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bswc_scoring",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-score-publish pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "stale_results_discarded_total",
			Help:      "Completed refreshes discarded because a newer one superseded them.",
		}),
		ReportsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "reports_scored_total",
			Help:      "Hazard reports evaluated across all refresh passes.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "events_published_total",
			Help:      "Outbound events delivered to the map surface.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bswc_scoring",
			Name:      "publish_errors_total",
			Help:      "Outbound events that failed to publish.",
		}),
		SessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bswc_scoring",
			Name:      "session_active",
			Help:      "1 while a scoring session holds an active forecast.",
		}),
	}
}

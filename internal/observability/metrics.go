package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "quiniela"

// Metrics owns a private Prometheus registry with the HTTP and business
// collectors. It satisfies usecase.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	predictionsSaved    *prometheus.CounterVec
	predictionsRescored prometheus.Counter
	notifications       *prometheus.CounterVec
	fixturesUpserted    prometheus.Counter
	fixtureLeagueFailed prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		predictionsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_saved_total",
			Help:      "Predictions saved, by action (create or update).",
		}, []string{"action"}),
		predictionsRescored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_rescored_total",
			Help:      "Predictions re-scored after a final result was recorded.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Reminder notifications by window and outcome.",
		}, []string{"window", "outcome"}),
		fixturesUpserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fixture_sync_upserted_total",
			Help:      "Matches upserted by the fixture sync job.",
		}),
		fixtureLeagueFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fixture_sync_league_failures_total",
			Help:      "League seasons the fixture sync job failed to fetch.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackInFlight increments the in-flight gauge and returns its release func.
func (m *Metrics) TrackInFlight() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveHTTPRequest records one served request. route is the matched mux
// pattern, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) PredictionSaved(action string) {
	m.predictionsSaved.WithLabelValues(action).Inc()
}

func (m *Metrics) PredictionsRescored(count int) {
	if count > 0 {
		m.predictionsRescored.Add(float64(count))
	}
}

func (m *Metrics) NotificationOutcome(window, outcome string, count int) {
	if count > 0 {
		m.notifications.WithLabelValues(window, outcome).Add(float64(count))
	}
}

func (m *Metrics) FixturesUpserted(count int) {
	if count > 0 {
		m.fixturesUpserted.Add(float64(count))
	}
}

func (m *Metrics) FixtureLeagueFailed() {
	m.fixtureLeagueFailed.Inc()
}

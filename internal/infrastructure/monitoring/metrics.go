package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Session registry metrics
	SessionsActive   prometheus.Gauge
	SessionsAdded    prometheus.Counter
	SessionsRemoved  prometheus.Counter
	EngineLinks      prometheus.Counter
	EngineUnlinks    prometheus.Counter
	EngineFailures   *prometheus.CounterVec
	SelectionChanges prometheus.Counter

	// Store metrics
	ActionsDispatched *prometheus.CounterVec
	ReducerErrors     *prometheus.CounterVec
	ReduceDuration    prometheus.Histogram
	Subscriptions     prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
}

// NewMetrics creates a new metrics collector registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Session registry metrics
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_sessions_active",
				Help: "Number of sessions in the registry",
			},
		),
		SessionsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_sessions_added_total",
				Help: "Total number of sessions added to the registry",
			},
		),
		SessionsRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_sessions_removed_total",
				Help: "Total number of sessions removed from the registry",
			},
		),
		EngineLinks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_engine_session_links_total",
				Help: "Total number of engine sessions linked to a session",
			},
		),
		EngineUnlinks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_engine_session_unlinks_total",
				Help: "Total number of engine sessions unlinked and closed",
			},
		),
		EngineFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_engine_failures_total",
				Help: "Total number of failed engine operations",
			},
			[]string{"operation"},
		),
		SelectionChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_session_selections_total",
				Help: "Total number of selected-session notifications",
			},
		),

		// Store metrics
		ActionsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_store_actions_total",
				Help: "Total number of actions reduced by the store",
			},
			[]string{"action"},
		),
		ReducerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_store_reducer_errors_total",
				Help: "Total number of actions rejected by a reducer",
			},
			[]string{"action"},
		),
		ReduceDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "browser_store_reduce_duration_seconds",
				Help:    "Time spent reducing one action and notifying subscribers",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		Subscriptions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_store_subscriptions",
				Help: "Number of live store subscriptions",
			},
		),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_api_requests_total",
				Help: "Total number of control API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "browser_api_request_duration_seconds",
				Help:    "Control API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_api_ws_connections",
				Help: "Number of active state stream connections",
			},
		),
	}
}

// SetSessionsActive sets the number of sessions in the registry
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
}

// IncSessionsAdded increments the sessions added counter
func (m *Metrics) IncSessionsAdded() {
	if m == nil {
		return
	}
	m.SessionsAdded.Inc()
}

// AddSessionsRemoved adds n to the sessions removed counter
func (m *Metrics) AddSessionsRemoved(n int) {
	if m == nil {
		return
	}
	m.SessionsRemoved.Add(float64(n))
}

// IncEngineLinks increments the link counter
func (m *Metrics) IncEngineLinks() {
	if m == nil {
		return
	}
	m.EngineLinks.Inc()
}

// IncEngineUnlinks increments the unlink counter
func (m *Metrics) IncEngineUnlinks() {
	if m == nil {
		return
	}
	m.EngineUnlinks.Inc()
}

// RecordEngineFailure records a failed engine operation
func (m *Metrics) RecordEngineFailure(operation string) {
	if m == nil {
		return
	}
	m.EngineFailures.WithLabelValues(operation).Inc()
}

// IncSelectionChanges increments the selection counter
func (m *Metrics) IncSelectionChanges() {
	if m == nil {
		return
	}
	m.SelectionChanges.Inc()
}

// RecordAction records one reduced action
func (m *Metrics) RecordAction(action string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.ActionsDispatched.WithLabelValues(action).Inc()
	m.ReduceDuration.Observe(duration.Seconds())
	if err != nil {
		m.ReducerErrors.WithLabelValues(action).Inc()
	}
}

// AddSubscriptions adjusts the live subscription gauge
func (m *Metrics) AddSubscriptions(delta int) {
	if m == nil {
		return
	}
	m.Subscriptions.Add(float64(delta))
}

// RecordHTTPRequest records a control API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

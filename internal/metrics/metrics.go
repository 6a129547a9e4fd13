// Package metrics holds the Prometheus collectors for ranking requests and
// sorting-config transitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricRequestsTotal          = "ranking_requests_total"
	MetricDurationSeconds        = "ranking_duration_seconds"
	MetricCandidatesScoredTotal  = "ranking_candidates_scored_total"
	MetricConfigTransitionsTotal = "ranking_config_transitions_total"
	MetricActiveFallbacksTotal   = "ranking_active_config_fallbacks_total"
)

// Config operations used as the "operation" label.
const (
	OpSave   = "save"
	OpApply  = "apply"
	OpRevert = "revert"
	OpDelete = "delete"
)

// Transition results used as the "result" label.
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultNotFound  = "not_found"
	ResultForbidden = "forbidden"
	ResultError     = "error"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	candidatesScored prometheus.Counter
	transitions      *prometheus.CounterVec
	fallbacks        prometheus.Counter
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRequestsTotal,
				Help: "Ranking API requests by endpoint and HTTP status",
			},
			[]string{"endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDurationSeconds,
				Help:    "Ranking API request duration in seconds by endpoint",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"endpoint"},
		),
		candidatesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCandidatesScoredTotal,
			Help: "Candidates scored across all requests",
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricConfigTransitionsTotal,
				Help: "Sorting-config lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricActiveFallbacksTotal,
			Help: "Times the active config resolved to the default because storage was unusable",
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requests,
		m.duration,
		m.candidatesScored,
		m.transitions,
		m.fallbacks,
	}
}

func (m *Metrics) IncRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) ObserveDuration(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) AddCandidatesScored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidatesScored.Add(float64(n))
}

func (m *Metrics) IncTransition(operation, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

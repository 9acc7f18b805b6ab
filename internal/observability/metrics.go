package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	gradingsTotal      *prometheus.CounterVec
	moderationTotal    *prometheus.CounterVec
	dueSoonRequestsVec *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_transitions_total",
			Help: "Assignment lifecycle transitions, attempted and applied.",
		}, []string{"from", "to", "outcome"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Accepted submissions, split by lateness and attempt kind.",
		}, []string{"late", "kind"})

		gradingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradings_total",
			Help: "Grading decisions, split by action and authority.",
		}, []string{"action", "authority"})

		moderationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Moderation actions applied to resolved reports.",
		}, []string{"action"})

		dueSoonRequestsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "due_soon_requests_total",
			Help: "Due-soon digest lookups, split by cache outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			transitionsTotal,
			submissionsTotal,
			gradingsTotal,
			moderationTotal,
			dueSoonRequestsVec,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AssignmentTransitions exposes the assignment lifecycle transition counter.
func AssignmentTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return transitionsTotal
}

// Submissions exposes the accepted submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Gradings exposes the grading decision counter.
func Gradings() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingsTotal
}

// ModerationActions exposes the moderation action counter.
func ModerationActions() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationTotal
}

// DueSoonRequests exposes the due-soon digest lookup counter.
func DueSoonRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return dueSoonRequestsVec
}

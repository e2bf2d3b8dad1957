// Package metrics holds the Prometheus collectors of the API.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio"

const (
	LabelSuccess = "success"
	LabelFailure = "failure"
)

type Metrics struct {
	Requests          *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
	RateLimitRejected *prometheus.CounterVec
	SagaRuns          *prometheus.CounterVec
	Compensations     *prometheus.CounterVec
	PostCommits       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of request handling time",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
		}, []string{"method", "route"}),

		RateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Count of requests rejected by a rate limiter",
		}, []string{"operation"}),

		SagaRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "runs_total",
			Help:      "Count of upload sagas by flow and result",
		}, []string{"flow", "result"}),

		Compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "compensations_total",
			Help:      "Count of compensating actions run after a failed step, by result",
		}, []string{"flow", "step", "result"}),

		PostCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "post_commit_actions_total",
			Help:      "Count of best-effort actions run after a successful saga, by result",
		}, []string{"flow", "step", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestLatency, m.RateLimitRejected, m.SagaRuns, m.Compensations, m.PostCommits)
	}
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, status).Inc()
	m.RequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RateLimited(operation string) {
	if m == nil {
		return
	}
	m.RateLimitRejected.WithLabelValues(operation).Inc()
}

func (m *Metrics) SagaFinished(flow string, err error) {
	if m == nil {
		return
	}
	m.SagaRuns.WithLabelValues(flow, result(err)).Inc()
}

func (m *Metrics) Compensated(flow, step string, err error) {
	if m == nil {
		return
	}
	m.Compensations.WithLabelValues(flow, step, result(err)).Inc()
}

func (m *Metrics) PostCommitted(flow, step string, err error) {
	if m == nil {
		return
	}
	m.PostCommits.WithLabelValues(flow, step, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return LabelFailure
	}
	return LabelSuccess
}

// Package metrics exposes Prometheus counters for the auth endpoints.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report into.
type Recorder interface {
	RecordAuthOutcome(operation, outcome string)
	RecordGateDecision(admitted bool, reason string)
	ObservePasswordHash(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	authOutcomes  *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	hashLatency   prometheus.Histogram
	httpStatus    *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Account operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_gate_decisions_total",
			Help: "Access gate decisions by result and rejection reason.",
		}, []string{"result", "reason"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auth_password_hash_seconds",
			Help:    "Time spent hashing or verifying a password.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.authOutcomes, c.gateDecisions, c.hashLatency, c.httpStatus)
	return c
}

// RecordAuthOutcome counts one account operation.
func (c *Collector) RecordAuthOutcome(operation, outcome string) {
	c.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// RecordGateDecision counts one access gate evaluation.
func (c *Collector) RecordGateDecision(admitted bool, reason string) {
	result := "rejected"
	if admitted {
		result = "admitted"
	}
	c.gateDecisions.WithLabelValues(result, reason).Inc()
}

// ObservePasswordHash records argon2 latency.
func (c *Collector) ObservePasswordHash(duration time.Duration) {
	c.hashLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus counts a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordAuthOutcome(string, string) {}
func (Nop) RecordGateDecision(bool, string) {}
func (Nop) ObservePasswordHash(time.Duration) {}
func (Nop) RecordHTTPStatus(int) {}

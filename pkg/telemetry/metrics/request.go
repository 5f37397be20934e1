package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks chat completion calls.
//
// Metrics:
//   - <ns>_requests_total: calls by model and outcome
//   - <ns>_request_duration_seconds: call latency by model
//   - <ns>_errors_total: failed calls by outcome
//   - <ns>_tokens_total: tokens by kind (prompt, completion)
//   - <ns>_request_size_bytes: body sizes by direction
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	sizeBytes       *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(namespace string, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of chat completion calls",
			},
			[]string{"model", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat completion calls in seconds",
				// Completions take from a few hundred ms to tens of seconds
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"model"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed calls by outcome",
			},
			[]string{"outcome"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Total number of tokens reported by responses",
			},
			[]string{"kind"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_size_bytes",
				Help:      "Size of request and response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 2, 10), // 256B to 128KB
			},
			[]string{"direction"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.errorsTotal,
		rm.tokensTotal,
		rm.sizeBytes,
	)

	return rm
}

// RecordRequest counts one call and observes its duration.
func (rm *RequestMetrics) RecordRequest(model, outcome string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(model, outcome).Inc()
	rm.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordError counts one failed call.
func (rm *RequestMetrics) RecordError(outcome string) {
	rm.errorsTotal.WithLabelValues(outcome).Inc()
}

// RecordTokens adds prompt and completion token counts.
func (rm *RequestMetrics) RecordTokens(promptTokens, completionTokens int) {
	if promptTokens > 0 {
		rm.tokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		rm.tokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	}
}

// RecordSize records the size of a request or response body.
// direction is "request" or "response".
func (rm *RequestMetrics) RecordSize(direction string, sizeBytes int) {
	if sizeBytes > 0 {
		rm.sizeBytes.WithLabelValues(direction).Observe(float64(sizeBytes))
	}
}

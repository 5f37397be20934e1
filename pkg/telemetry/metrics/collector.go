package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/chatclient/pkg/config"
	"mercator-hq/chatclient/pkg/transport"
)

// unknownModel labels calls whose payload does not name a model.
const unknownModel = "unknown"

// Collector records Prometheus metrics for every API call. It implements
// transport.Observer, so registering it on a transport.Client is enough:
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	client := transport.NewClient(transport.WithObserver(collector))
//
// When the configuration has Enabled=false every method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics    *RequestMetrics
	credentialMetrics *CredentialMetrics

	// chat.Model is a closed set, but any transport.ModelNamer payload can
	// name a model, so the label is still capped
	cardinalityLimiter *CardinalityLimiter

	routesMu sync.Mutex
	routes   map[string]http.Handler
}

var _ transport.Observer = (*Collector)(nil)

// NewCollector creates a collector registering its metrics on registry.
// A nil registry gets a fresh one rather than the global default, so several
// collectors can coexist in tests.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(cfg.Namespace, registry),
		credentialMetrics:  NewCredentialMetrics(cfg.Namespace, registry),
		cardinalityLimiter: NewCardinalityLimiter(100),
	}
}

// ObserveExchange records one completed call.
func (c *Collector) ObserveExchange(_ context.Context, ex *transport.Exchange) {
	if !c.config.Enabled {
		return
	}

	switch ex.Operation {
	case transport.OperationCheckAccess:
		c.RecordAccessCheck(ex.Outcome)
	default:
		c.RecordRequest(ex.Model, ex.Outcome, ex.Latency, ex.PromptTokens, ex.CompletionTokens)
		c.requestMetrics.RecordSize("request", len(ex.RequestBody))
		c.requestMetrics.RecordSize("response", len(ex.ResponseBody))
	}
}

// RecordRequest records a completed chat completion call.
//
// Parameters:
//   - model: model name; empty becomes "unknown"
//   - outcome: one of the transport.Outcome* labels
//   - duration: wall time of the call
//   - promptTokens, completionTokens: usage reported by the response
func (c *Collector) RecordRequest(model, outcome string, duration time.Duration, promptTokens, completionTokens int) {
	if !c.config.Enabled {
		return
	}

	if model == "" {
		model = unknownModel
	}
	if !c.cardinalityLimiter.Allow(model) {
		model = "other"
	}

	c.requestMetrics.RecordRequest(model, outcome, duration)
	c.requestMetrics.RecordTokens(promptTokens, completionTokens)
	if outcome != transport.OutcomeOK {
		c.requestMetrics.RecordError(outcome)
	}
}

// RecordAccessCheck records the result of a credential access check. The
// credential_access gauge is 1 only after an "ok" check.
func (c *Collector) RecordAccessCheck(outcome string) {
	if !c.config.Enabled {
		return
	}

	c.credentialMetrics.RecordAccessCheck(outcome)
}

// RecordKeyReload records a key-file reload attempt. It has the shape of
// auth.WithReloadHook.
func (c *Collector) RecordKeyReload(err error) {
	if !c.config.Enabled {
		return
	}

	c.credentialMetrics.RecordReload(err)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values a collector
// will create.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the
// limit, tracking it in the latter case.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of tracked values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/chatclient/pkg/transport"
)

// CredentialMetrics tracks the health of the API credential.
//
// Metrics:
//   - <ns>_credential_access: 1 if the last access check succeeded, else 0
//   - <ns>_access_checks_total: access checks by outcome
//   - <ns>_key_reloads_total: key-file reloads by result (success, failure)
type CredentialMetrics struct {
	access       prometheus.Gauge
	accessChecks *prometheus.CounterVec
	reloads      *prometheus.CounterVec
}

// NewCredentialMetrics creates and registers credential metrics.
func NewCredentialMetrics(namespace string, registry *prometheus.Registry) *CredentialMetrics {
	cm := &CredentialMetrics{
		access: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "credential_access",
				Help:      "Whether the last access check succeeded (1=granted, 0=denied or failed)",
			},
		),

		accessChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_checks_total",
				Help:      "Total number of credential access checks",
			},
			[]string{"outcome"},
		),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "key_reloads_total",
				Help:      "Total number of API key file reloads",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(cm.access, cm.accessChecks, cm.reloads)

	return cm
}

// RecordAccessCheck updates the access gauge and counts the check.
func (cm *CredentialMetrics) RecordAccessCheck(outcome string) {
	if outcome == transport.OutcomeOK {
		cm.access.Set(1)
	} else {
		cm.access.Set(0)
	}
	cm.accessChecks.WithLabelValues(outcome).Inc()
}

// RecordReload counts a key-file reload attempt.
func (cm *CredentialMetrics) RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	cm.reloads.WithLabelValues(result).Inc()
}

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/chatclient/pkg/config"
	"mercator-hq/chatclient/pkg/transport"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}

	t.Run("nil registry", func(t *testing.T) {
		c := NewCollector(&config.MetricsConfig{Enabled: true}, nil)
		if c.Registry() == nil {
			t.Fatal("expected a fresh registry")
		}
		if c.config.Namespace != config.DefaultMetricsNamespace {
			t.Errorf("Namespace = %q", c.config.Namespace)
		}
	})
}

func TestCollector_ObserveExchange(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	rm := collector.requestMetrics

	exchanges := []*transport.Exchange{
		{
			Operation:        transport.OperationPerform,
			Model:            "gpt-3.5-turbo",
			Outcome:          transport.OutcomeOK,
			Latency:          800 * time.Millisecond,
			PromptTokens:     9,
			CompletionTokens: 12,
			RequestBody:      []byte(`{"model":"gpt-3.5-turbo"}`),
			ResponseBody:     []byte(`{"id":"x"}`),
		},
		{
			Operation: transport.OperationPerform,
			Model:     "gpt-3.5-turbo",
			Outcome:   transport.OutcomeUnauthorized,
			Latency:   100 * time.Millisecond,
		},
		{
			Operation: transport.OperationPerform,
			Outcome:   transport.OutcomeNetwork,
		},
	}
	for _, ex := range exchanges {
		collector.ObserveExchange(context.Background(), ex)
	}

	tests := []struct {
		name    string
		counter prometheus.Collector
		want    float64
	}{
		{"ok requests", rm.requestsTotal.WithLabelValues("gpt-3.5-turbo", "ok"), 1},
		{"unauthorized requests", rm.requestsTotal.WithLabelValues("gpt-3.5-turbo", "unauthorized"), 1},
		{"unknown model", rm.requestsTotal.WithLabelValues("unknown", "network"), 1},
		{"unauthorized errors", rm.errorsTotal.WithLabelValues("unauthorized"), 1},
		{"network errors", rm.errorsTotal.WithLabelValues("network"), 1},
		{"prompt tokens", rm.tokensTotal.WithLabelValues("prompt"), 9},
		{"completion tokens", rm.tokensTotal.WithLabelValues("completion"), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.counter); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(rm.errorsTotal); n != 2 {
		t.Errorf("errors_total series = %d, want 2 (ok calls are not errors)", n)
	}
}

func TestCollector_AccessCheck(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	cm := collector.credentialMetrics

	collector.ObserveExchange(context.Background(), &transport.Exchange{
		Operation: transport.OperationCheckAccess,
		Outcome:   transport.OutcomeOK,
	})
	if got := testutil.ToFloat64(cm.access); got != 1 {
		t.Errorf("credential_access = %v after a granted check, want 1", got)
	}

	collector.ObserveExchange(context.Background(), &transport.Exchange{
		Operation: transport.OperationCheckAccess,
		Outcome:   transport.OutcomeUnauthorized,
	})
	if got := testutil.ToFloat64(cm.access); got != 0 {
		t.Errorf("credential_access = %v after a denied check, want 0", got)
	}

	if n := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); n != 0 {
		t.Errorf("access checks must not count as requests, got %d series", n)
	}
}

func TestCollector_RecordKeyReload(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordKeyReload(nil)
	collector.RecordKeyReload(nil)
	collector.RecordKeyReload(errors.New("bad key"))

	reloads := collector.credentialMetrics.reloads
	if got := testutil.ToFloat64(reloads.WithLabelValues("success")); got != 2 {
		t.Errorf("success reloads = %v", got)
	}
	if got := testutil.ToFloat64(reloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure reloads = %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.ObserveExchange(context.Background(), &transport.Exchange{
		Operation: transport.OperationPerform,
		Model:     "gpt-3.5-turbo",
		Outcome:   transport.OutcomeOK,
	})
	collector.RecordKeyReload(nil)

	if n := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); n != 0 {
		t.Errorf("disabled collector recorded %d request series", n)
	}
	if n := testutil.CollectAndCount(collector.credentialMetrics.reloads); n != 0 {
		t.Errorf("disabled collector recorded %d reload series", n)
	}
}

func TestCollector_CardinalityLimit(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	for i := 0; i < 5; i++ {
		collector.RecordRequest(fmt.Sprintf("model-%d", i), transport.OutcomeOK, time.Second, 0, 0)
	}

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("other", "ok")); got != 3 {
		t.Errorf("overflow series = %v, want 3", got)
	}
	if collector.cardinalityLimiter.Count() != 2 {
		t.Errorf("Count() = %d, want 2", collector.cardinalityLimiter.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordRequest("gpt-3.5-turbo", transport.OutcomeOK, time.Second, 5, 7)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`test_requests_total{model="gpt-3.5-turbo",outcome="ok"} 1`,
		`test_tokens_total{kind="completion"} 7`,
		"test_request_duration_seconds",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestCardinalityLimiter_Allow(t *testing.T) {
	cl := NewCardinalityLimiter(1)

	if !cl.Allow("a") {
		t.Error("first value should be allowed")
	}
	if !cl.Allow("a") {
		t.Error("tracked value should stay allowed")
	}
	if cl.Allow("b") {
		t.Error("value over the limit should be refused")
	}
}

func TestCollector_Mux(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.Handle("/ready", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	srv := httptest.NewServer(collector.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("/ready status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}

	resp, err = http.Get(srv.URL + collector.metricsPath())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}
}

// Package metrics provides Prometheus metrics for the chat client.
//
// # Overview
//
// A Collector observes every call made through a transport.Client and keeps
// counters and histograms on its own registry. Nothing is registered on the
// global Prometheus registry.
//
// # Metrics
//
//   - chatclient_requests_total{model,outcome}
//   - chatclient_request_duration_seconds{model}
//   - chatclient_errors_total{outcome}
//   - chatclient_tokens_total{kind}
//   - chatclient_request_size_bytes{direction}
//   - chatclient_credential_access
//   - chatclient_access_checks_total{outcome}
//   - chatclient_key_reloads_total{result}
//
// The prefix is the configured namespace.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	client := transport.NewClient(transport.WithObserver(collector))
//
//	watcher, _ := auth.NewKeyWatcher(path, cred,
//		auth.WithReloadHook(collector.RecordKeyReload))
//
//	go collector.Serve(ctx)
package metrics

// Package health exposes liveness and readiness probes for a long-running
// chatclient process.
//
// Checks are registered by name and run concurrently on each readiness
// probe:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("exchange_log", func(ctx context.Context) error {
//		_, err := store.Count(ctx, &exchangelog.Query{})
//		return err
//	})
//	collector.Handle("/health", checker.LivenessHandler())
//	collector.Handle("/ready", checker.ReadinessHandler())
//
// The readiness handler answers 503 with the failing checks listed when any
// check returns an error or exceeds the per-check timeout.
package health

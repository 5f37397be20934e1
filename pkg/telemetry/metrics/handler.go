package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the collector's registry.
//
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// Handle registers an extra handler that Serve exposes next to the metrics,
// such as health probes. Register handlers before calling Serve.
func (c *Collector) Handle(path string, h http.Handler) {
	c.routesMu.Lock()
	defer c.routesMu.Unlock()
	if c.routes == nil {
		c.routes = make(map[string]http.Handler)
	}
	c.routes[path] = h
}

// Mux returns a mux serving the metrics at the configured path plus every
// handler registered with Handle.
func (c *Collector) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(c.metricsPath(), c.Handler())

	c.routesMu.Lock()
	defer c.routesMu.Unlock()
	for path, h := range c.routes {
		mux.Handle(path, h)
	}
	return mux
}

func (c *Collector) metricsPath() string {
	if c.config.Path == "" {
		return "/metrics"
	}
	return c.config.Path
}

// Serve exposes the metrics at cfg.Path on cfg.ListenAddress until ctx is
// cancelled, then shuts the server down. It returns nil after a clean
// shutdown.
func (c *Collector) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              c.config.ListenAddress,
		Handler:           c.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger := slog.Default().With("component", "metrics")
	logger.Info("serving metrics", "address", c.config.ListenAddress, "path", c.metricsPath())

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	return nil
}

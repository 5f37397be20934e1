package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/auth"
	"mercator-hq/chatclient/pkg/cli"
	"mercator-hq/chatclient/pkg/config"
	"mercator-hq/chatclient/pkg/exchangelog"
	"mercator-hq/chatclient/pkg/exchangelog/recorder"
	"mercator-hq/chatclient/pkg/exchangelog/retention"
	"mercator-hq/chatclient/pkg/exchangelog/storage"
	"mercator-hq/chatclient/pkg/telemetry/health"
	"mercator-hq/chatclient/pkg/telemetry/logging"
	"mercator-hq/chatclient/pkg/telemetry/metrics"
	"mercator-hq/chatclient/pkg/transport"
)

// appOptions selects which parts of the runtime a command needs.
type appOptions struct {
	// credential resolves the API key and builds the transport client.
	credential bool
	// exchangeLog opens the exchange log store even when recording is
	// disabled, for commands that read it.
	exchangeLog bool
}

// app holds everything a command runs against. Close releases it in
// reverse order of construction.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	printer    *cli.Printer
	credential *auth.Credential
	client     *transport.Client
	metrics    *metrics.Collector
	store      exchangelog.Storage
	recorder   *recorder.Recorder
	pruner     *retention.Pruner

	cancel  context.CancelFunc
	closers []func() error
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewUsageError("failed to load config", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		AddSource:      cfg.Logging.AddSource,
		RedactSecrets:  !cfg.Logging.DisableRedaction,
		RedactPatterns: cfg.Logging.RedactPatterns,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewUsageError("invalid logging configuration", err)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	a := &app{
		cfg:     cfg,
		logger:  logger,
		printer: cli.NewPrinter(cmd.OutOrStdout(), noColor),
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		cancel:  cancel,
	}

	if cfg.ExchangeLog.Enabled || opts.exchangeLog {
		if err := a.openExchangeLog(ctx, opts.credential); err != nil {
			a.Close()
			return nil, err
		}
	}

	if opts.credential {
		if err := a.connect(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress != "" {
		a.serveTelemetry(ctx)
	}

	return a, nil
}

// serveTelemetry exposes metrics and health probes until ctx is done.
func (a *app) serveTelemetry(ctx context.Context) {
	checker := health.New(2 * time.Second)
	if a.store != nil {
		checker.Register("exchange_log", func(ctx context.Context) error {
			_, err := a.store.Count(ctx, &exchangelog.Query{})
			return err
		})
	}
	if a.credential != nil {
		checker.Register("credential", func(context.Context) error {
			if path := a.cfg.API.APIKeyFile; path != "" {
				_, err := auth.LoadKeyFile(path)
				return err
			}
			return auth.ValidateAuth(a.credential.Auth())
		})
	}
	a.metrics.Handle("/health", checker.LivenessHandler())
	a.metrics.Handle("/ready", checker.ReadinessHandler())

	go func() {
		if err := a.metrics.Serve(ctx); err != nil {
			a.logger.Error("metrics endpoint stopped", "error", err)
		}
	}()
}

// openExchangeLog opens the store and, when recording, starts the recorder
// and the retention schedule.
func (a *app) openExchangeLog(ctx context.Context, recording bool) error {
	cfg := a.cfg.ExchangeLog

	store, err := storage.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open exchange log: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	a.pruner = retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.RetentionDays,
		MaxRecords:    cfg.MaxRecords,
		PruneSchedule: cfg.PruneSchedule,
	})

	if !recording || !cfg.Enabled {
		return nil
	}

	a.recorder = recorder.NewRecorder(store, &recorder.Config{AsyncBuffer: cfg.AsyncBuffer})
	a.closers = append(a.closers, a.recorder.Close)

	if err := a.pruner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention schedule: %w", err)
	}
	a.closers = append(a.closers, func() error {
		a.pruner.Stop()
		return nil
	})
	return nil
}

// connect resolves the credential and builds the transport client.
func (a *app) connect(ctx context.Context) error {
	api := a.cfg.API

	var opts []auth.Option
	if api.Organization != "" {
		opts = append(opts, auth.WithOrganization(api.Organization))
	}

	var err error
	switch {
	case api.APIKeyFile != "":
		var authValue string
		authValue, err = auth.LoadKeyFile(api.APIKeyFile)
		if err != nil {
			return cli.NewUsageError("failed to load API key", err)
		}
		a.credential, err = auth.NewCredential(authValue, opts...)
	case api.APIKey != "":
		a.credential, err = auth.NewCredentialFromKey(api.APIKey, opts...)
	default:
		return cli.NewUsageError(fmt.Sprintf("no API key: set api.api_key, api.api_key_file, %sAPI_KEY or %s",
			config.EnvPrefix, config.FallbackKeyEnv), nil)
	}
	if err != nil {
		return cli.NewUsageError("invalid API key", err)
	}

	if api.WatchKeyFile {
		watcher, err := auth.NewKeyWatcher(api.APIKeyFile, a.credential,
			auth.WithReloadHook(a.metrics.RecordKeyReload),
			auth.WithWatcherLogger(a.logger),
		)
		if err != nil {
			return fmt.Errorf("failed to watch API key file: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				a.logger.Warn("key file watcher stopped", "error", err)
			}
		}()
	}

	observers := []transport.Observer{a.metrics}
	if a.recorder != nil {
		observers = append(observers, a.recorder)
	}

	clientOpts := []transport.Option{
		transport.WithEndpoint(api.Endpoint),
		transport.WithModelsEndpoint(api.ModelsEndpoint),
		transport.WithObserver(observers...),
		transport.WithLogger(a.logger),
	}
	if api.Timeout > 0 {
		clientOpts = append(clientOpts, transport.WithTimeout(api.Timeout))
	}
	a.client = transport.NewClient(clientOpts...)

	a.logger.Debug("client ready",
		"endpoint", api.Endpoint,
		"credential", a.credential,
		"exchange_log", a.recorder != nil,
	)
	return nil
}

// Close stops background work and flushes the exchange log.
func (a *app) Close() error {
	a.cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if a.recorder != nil && a.recorder.Dropped() > 0 {
		a.logger.Warn("exchange records dropped", "count", a.recorder.Dropped())
	}
	return errors.Join(errs...)
}

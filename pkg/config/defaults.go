package config

import (
	"mercator-hq/chatclient/pkg/chat"
	"mercator-hq/chatclient/pkg/transport"
)

// Default values for configuration fields.
const (
	// API defaults
	DefaultEndpoint       = transport.Endpoint
	DefaultModelsEndpoint = transport.ModelsEndpoint
	DefaultModel          = string(chat.GPT35Turbo)

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"

	// Metrics defaults
	DefaultMetricsNamespace = "chatclient"
	DefaultMetricsPath      = "/metrics"

	// Exchange log defaults
	DefaultExchangeLogDriver        = "sqlite"
	DefaultExchangeLogDSN           = "data/exchanges.db"
	DefaultExchangeLogAsyncBuffer   = 100
	DefaultExchangeLogRetentionDays = 30
	DefaultExchangeLogPruneSchedule = "0 3 * * *"

	// Ask defaults
	DefaultAskConcurrency = 4
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.API.Endpoint == "" {
		cfg.API.Endpoint = DefaultEndpoint
	}
	if cfg.API.ModelsEndpoint == "" {
		cfg.API.ModelsEndpoint = DefaultModelsEndpoint
	}
	if cfg.API.Model == "" {
		cfg.API.Model = DefaultModel
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.ExchangeLog.Driver == "" {
		cfg.ExchangeLog.Driver = DefaultExchangeLogDriver
	}
	// mysql has no sensible default DSN
	if cfg.ExchangeLog.DSN == "" && (cfg.ExchangeLog.Driver == "sqlite" || cfg.ExchangeLog.Driver == "sqlite3") {
		cfg.ExchangeLog.DSN = DefaultExchangeLogDSN
	}
	if cfg.ExchangeLog.AsyncBuffer == 0 {
		cfg.ExchangeLog.AsyncBuffer = DefaultExchangeLogAsyncBuffer
	}
	if cfg.ExchangeLog.RetentionDays == 0 {
		cfg.ExchangeLog.RetentionDays = DefaultExchangeLogRetentionDays
	}
	if cfg.ExchangeLog.PruneSchedule == "" {
		cfg.ExchangeLog.PruneSchedule = DefaultExchangeLogPruneSchedule
	}

	if cfg.Ask.Concurrency == 0 {
		cfg.Ask.Concurrency = DefaultAskConcurrency
	}
}

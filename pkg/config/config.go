package config

import (
	"time"

	"mercator-hq/chatclient/pkg/telemetry/logging"
)

// Config is the root configuration for the chat client and its CLI.
type Config struct {
	// API contains the remote endpoint and credential settings.
	API APIConfig `yaml:"api" toml:"api"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`

	// ExchangeLog controls the record of raw requests and responses.
	ExchangeLog ExchangeLogConfig `yaml:"exchange_log" toml:"exchange_log"`

	// Ask contains defaults for the ask and fill commands.
	Ask AskConfig `yaml:"ask" toml:"ask"`
}

// APIConfig contains settings for reaching the chat completions API.
type APIConfig struct {
	// Endpoint is the chat completions URL.
	// Default: "https://api.openai.com/v1/chat/completions"
	Endpoint string `yaml:"endpoint" toml:"endpoint"`

	// ModelsEndpoint is the URL used by the access check.
	// Default: "https://api.openai.com/v1/models"
	ModelsEndpoint string `yaml:"models_endpoint" toml:"models_endpoint"`

	// APIKey is the raw "sk-..." key. Prefer APIKeyFile or the
	// CHATCLIENT_API_KEY / OPENAI_API_KEY environment variables.
	APIKey string `yaml:"api_key" toml:"api_key"`

	// APIKeyFile is a path to a file holding the key (mode 0600 or 0400).
	APIKeyFile string `yaml:"api_key_file" toml:"api_key_file"`

	// WatchKeyFile reloads the key whenever APIKeyFile changes.
	// Default: false
	WatchKeyFile bool `yaml:"watch_key_file" toml:"watch_key_file"`

	// Organization is sent as the OpenAI-Organization header when set.
	Organization string `yaml:"organization" toml:"organization"`

	// Model is the model used for new requests.
	// Default: "gpt-3.5-turbo"
	Model string `yaml:"model" toml:"model"`

	// Timeout bounds a whole request. Zero means no client-side limit.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format" toml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source" toml:"add_source"`

	// DisableRedaction turns off masking of keys and bearer tokens.
	// Default: false
	DisableRedaction bool `yaml:"disable_redaction" toml:"disable_redaction"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []logging.RedactPattern `yaml:"redact_patterns" toml:"redact_patterns"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "chatclient"
	Namespace string `yaml:"namespace" toml:"namespace"`

	// ListenAddress serves the Prometheus endpoint when set (e.g. ":9090").
	ListenAddress string `yaml:"listen_address" toml:"listen_address"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" toml:"path"`
}

// ExchangeLogConfig controls the exchange log.
type ExchangeLogConfig struct {
	// Enabled controls whether exchanges are recorded.
	// Default: false
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Driver selects the storage backend.
	// Options: "memory", "sqlite", "sqlite3", "mysql"
	// Default: "sqlite"
	Driver string `yaml:"driver" toml:"driver"`

	// DSN is the data source name passed to the driver.
	// Default: "data/exchanges.db"
	DSN string `yaml:"dsn" toml:"dsn"`

	// AsyncBuffer is the recorder queue size.
	// Default: 100
	AsyncBuffer int `yaml:"async_buffer" toml:"async_buffer"`

	// RetentionDays deletes records older than this many days. A negative
	// value keeps records forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days" toml:"retention_days"`

	// MaxRecords caps the number of stored records. Zero means no cap.
	MaxRecords int64 `yaml:"max_records" toml:"max_records"`

	// PruneSchedule is a cron expression for automatic pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule" toml:"prune_schedule"`
}

// AskConfig contains defaults for generated requests.
type AskConfig struct {
	// Concurrency bounds parallel questions in the fill command.
	// Default: 4
	Concurrency int `yaml:"concurrency" toml:"concurrency"`

	// SystemPrompt is prepended to every question when set.
	SystemPrompt string `yaml:"system_prompt" toml:"system_prompt"`

	// Temperature is applied to every request when set.
	Temperature *float64 `yaml:"temperature" toml:"temperature"`

	// MaxTokens is applied to every request when greater than zero.
	MaxTokens int `yaml:"max_tokens" toml:"max_tokens"`
}

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/chatclient/pkg/auth"
	"mercator-hq/chatclient/pkg/chat"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "api.endpoint").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError
// listing every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateExchangeLog(&cfg.ExchangeLog)...)
	errs = append(errs, validateAsk(&cfg.Ask)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateAPI(cfg *APIConfig) []FieldError {
	var errs []FieldError

	if err := validateURL(cfg.Endpoint); err != nil {
		errs = append(errs, FieldError{Field: "api.endpoint", Message: err.Error()})
	}
	if err := validateURL(cfg.ModelsEndpoint); err != nil {
		errs = append(errs, FieldError{Field: "api.models_endpoint", Message: err.Error()})
	}

	if _, err := chat.ParseModel(cfg.Model); err != nil {
		errs = append(errs, FieldError{Field: "api.model", Message: err.Error()})
	}

	// The key value itself never appears in the message.
	if cfg.APIKey != "" {
		if err := auth.ValidateAuth(auth.BearerPrefix + cfg.APIKey); err != nil {
			errs = append(errs, FieldError{Field: "api.api_key", Message: err.Error()})
		}
	}
	if cfg.Organization != "" {
		if err := auth.ValidateHeaderValue("organization", cfg.Organization); err != nil {
			errs = append(errs, FieldError{Field: "api.organization", Message: err.Error()})
		}
	}
	if cfg.WatchKeyFile && cfg.APIKeyFile == "" {
		errs = append(errs, FieldError{Field: "api.watch_key_file", Message: "requires api.api_key_file"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "api.timeout", Message: "must not be negative"})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Format),
		})
	}

	for i, p := range cfg.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}
	if cfg.Namespace == "" {
		errs = append(errs, FieldError{Field: "metrics.namespace", Message: "namespace is required when metrics are enabled"})
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{Field: "metrics.path", Message: "path must start with /"})
	}
	return errs
}

func validateExchangeLog(cfg *ExchangeLogConfig) []FieldError {
	var errs []FieldError

	switch cfg.Driver {
	case "memory":
	case "sqlite", "sqlite3", "mysql":
		if cfg.DSN == "" {
			errs = append(errs, FieldError{
				Field:   "exchange_log.dsn",
				Message: fmt.Sprintf("dsn is required for driver %q", cfg.Driver),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "exchange_log.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'memory', 'sqlite', 'sqlite3', or 'mysql'", cfg.Driver),
		})
	}

	if cfg.AsyncBuffer < 0 {
		errs = append(errs, FieldError{Field: "exchange_log.async_buffer", Message: "must not be negative"})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "exchange_log.max_records", Message: "must not be negative"})
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "exchange_log.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}

	return errs
}

func validateAsk(cfg *AskConfig) []FieldError {
	var errs []FieldError

	if cfg.Concurrency < 1 {
		errs = append(errs, FieldError{Field: "ask.concurrency", Message: "must be at least 1"})
	}
	if cfg.Temperature != nil {
		if t := *cfg.Temperature; t < chat.MinTemperature || t > chat.MaxTemperature {
			errs = append(errs, FieldError{
				Field:   "ask.temperature",
				Message: fmt.Sprintf("must be between %.0f and %.0f", chat.MinTemperature, chat.MaxTemperature),
			})
		}
	}
	if cfg.MaxTokens < 0 {
		errs = append(errs, FieldError{Field: "ask.max_tokens", Message: "must not be negative"})
	}
	return errs
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHATCLIENT_"

// FallbackKeyEnv is consulted for the API key when neither the file nor
// CHATCLIENT_API_KEY provides one.
const FallbackKeyEnv = "OPENAI_API_KEY"

// LoadConfig loads configuration from a YAML (.yaml, .yml) or TOML (.toml)
// file, applies defaults and validates the result. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration like LoadConfig and then
// applies CHATCLIENT_* environment overrides. Environment variables always
// take precedence over the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("unsupported configuration format %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Malformed boolean values are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(EnvPrefix + "API_KEY_FILE"); val != "" {
		cfg.API.APIKeyFile = val
	}
	if val := os.Getenv(EnvPrefix + "API_KEY"); val != "" {
		cfg.API.APIKey = val
	}
	// The fallback only applies when no other key source is configured
	if cfg.API.APIKey == "" && cfg.API.APIKeyFile == "" {
		cfg.API.APIKey = os.Getenv(FallbackKeyEnv)
	}
	if val := os.Getenv(EnvPrefix + "API_ORGANIZATION"); val != "" {
		cfg.API.Organization = val
	}
	if val := os.Getenv(EnvPrefix + "API_ENDPOINT"); val != "" {
		cfg.API.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "API_MODEL"); val != "" {
		cfg.API.Model = val
	}

	if val := os.Getenv(EnvPrefix + "LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv(EnvPrefix + "LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv(EnvPrefix + "METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}

	if val := os.Getenv(EnvPrefix + "EXCHANGE_LOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.ExchangeLog.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "EXCHANGE_LOG_DRIVER"); val != "" {
		cfg.ExchangeLog.Driver = val
	}
	if val := os.Getenv(EnvPrefix + "EXCHANGE_LOG_DSN"); val != "" {
		cfg.ExchangeLog.DSN = val
	}
}

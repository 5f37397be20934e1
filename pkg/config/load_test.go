package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testKey = "sk-" + strings.Repeat("k", 48)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv blanks every variable the loader consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CHATCLIENT_API_KEY", "CHATCLIENT_API_KEY_FILE", "CHATCLIENT_API_ORGANIZATION",
		"CHATCLIENT_API_ENDPOINT", "CHATCLIENT_API_MODEL", "CHATCLIENT_LOGGING_LEVEL",
		"CHATCLIENT_LOGGING_FORMAT", "CHATCLIENT_METRICS_ENABLED", "CHATCLIENT_EXCHANGE_LOG_ENABLED",
		"CHATCLIENT_EXCHANGE_LOG_DRIVER", "CHATCLIENT_EXCHANGE_LOG_DSN", "OPENAI_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "chatclient.yaml", `
api:
  organization: "org-acme"
  model: "gpt-3.5-turbo-0301"
  timeout: 45s
logging:
  level: debug
  format: json
exchange_log:
  enabled: true
  driver: memory
ask:
  concurrency: 2
  temperature: 0.4
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.API.Organization != "org-acme" {
		t.Errorf("API.Organization = %q", cfg.API.Organization)
	}
	if cfg.API.Model != "gpt-3.5-turbo-0301" {
		t.Errorf("API.Model = %q", cfg.API.Model)
	}
	if cfg.API.Timeout != 45*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout)
	}
	if cfg.API.Endpoint != DefaultEndpoint {
		t.Errorf("API.Endpoint = %q, want default", cfg.API.Endpoint)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.ExchangeLog.Enabled || cfg.ExchangeLog.Driver != "memory" {
		t.Errorf("ExchangeLog = %+v", cfg.ExchangeLog)
	}
	if cfg.Ask.Concurrency != 2 {
		t.Errorf("Ask.Concurrency = %d", cfg.Ask.Concurrency)
	}
	if cfg.Ask.Temperature == nil || *cfg.Ask.Temperature != 0.4 {
		t.Errorf("Ask.Temperature = %v", cfg.Ask.Temperature)
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeConfig(t, "chatclient.toml", `
[api]
organization = "org-toml"

[logging]
level = "warn"

[exchange_log]
driver = "sqlite3"
dsn = "file:test.db"
retention_days = 7
max_records = 500
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.API.Organization != "org-toml" {
		t.Errorf("API.Organization = %q", cfg.API.Organization)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != DefaultLoggingFormat {
		t.Errorf("Logging.Format = %q, want default", cfg.Logging.Format)
	}
	if cfg.ExchangeLog.Driver != "sqlite3" || cfg.ExchangeLog.DSN != "file:test.db" {
		t.Errorf("ExchangeLog = %+v", cfg.ExchangeLog)
	}
	if cfg.ExchangeLog.RetentionDays != 7 || cfg.ExchangeLog.MaxRecords != 500 {
		t.Errorf("ExchangeLog retention = %d/%d", cfg.ExchangeLog.RetentionDays, cfg.ExchangeLog.MaxRecords)
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}

	want := Default()
	if cfg.API != want.API || cfg.Logging.Level != want.Logging.Level || cfg.ExchangeLog != want.ExchangeLog {
		t.Errorf("LoadConfig(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "config.json", `{}`, "unsupported configuration format"},
		{"bad yaml", "config.yaml", "api: [", "failed to parse"},
		{"bad toml", "config.toml", "[api", "failed to parse"},
		{"unknown model", "config.yaml", "api:\n  model: gpt-9\n", "api.model"},
		{"bad endpoint", "config.yaml", "api:\n  endpoint: ftp://example.com\n", "api.endpoint"},
		{"bad key", "config.yaml", "api:\n  api_key: sk-short\n", "api.api_key"},
		{"watch without file", "config.yaml", "api:\n  watch_key_file: true\n", "api.watch_key_file"},
		{"bad driver", "config.yaml", "exchange_log:\n  driver: postgres\n", "exchange_log.driver"},
		{"mysql without dsn", "config.yaml", "exchange_log:\n  driver: mysql\n", "exchange_log.dsn"},
		{"bad schedule", "config.yaml", "exchange_log:\n  prune_schedule: \"every day\"\n", "exchange_log.prune_schedule"},
		{"temperature out of range", "config.yaml", "ask:\n  temperature: 2.5\n", "ask.temperature"},
		{"bad level", "config.yaml", "logging:\n  level: loud\n", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.Model = "gpt-9"
	cfg.Logging.Format = "xml"
	cfg.Ask.Concurrency = -1

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestValidate_KeyNotInMessage(t *testing.T) {
	cfg := Default()
	cfg.API.APIKey = "sk-secretsecret"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for malformed key")
	}
	if strings.Contains(err.Error(), "secretsecret") {
		t.Errorf("validation error leaks the key: %q", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "chatclient.yaml", `
api:
  organization: "org-file"
logging:
  level: info
`)

	t.Run("environment wins over file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHATCLIENT_API_ORGANIZATION", "org-env")
		t.Setenv("CHATCLIENT_LOGGING_LEVEL", "error")
		t.Setenv("CHATCLIENT_EXCHANGE_LOG_ENABLED", "true")
		t.Setenv("CHATCLIENT_API_KEY", testKey)

		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
		}
		if cfg.API.Organization != "org-env" {
			t.Errorf("API.Organization = %q, want org-env", cfg.API.Organization)
		}
		if cfg.Logging.Level != "error" {
			t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
		}
		if !cfg.ExchangeLog.Enabled {
			t.Error("ExchangeLog.Enabled = false, want true")
		}
		if cfg.API.APIKey != testKey {
			t.Error("API.APIKey not taken from CHATCLIENT_API_KEY")
		}
	})

	t.Run("fallback key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", testKey)

		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
		}
		if cfg.API.APIKey != testKey {
			t.Error("API.APIKey not taken from OPENAI_API_KEY")
		}
	})

	t.Run("fallback key ignored when key file configured", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", testKey)
		t.Setenv("CHATCLIENT_API_KEY_FILE", "/run/secrets/openai")

		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
		}
		if cfg.API.APIKey != "" {
			t.Error("OPENAI_API_KEY should not be used when a key file is configured")
		}
	})

	t.Run("explicit key wins over fallback", func(t *testing.T) {
		clearEnv(t)
		other := "sk-" + strings.Repeat("o", 48)
		t.Setenv("OPENAI_API_KEY", other)
		t.Setenv("CHATCLIENT_API_KEY", testKey)

		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
		}
		if cfg.API.APIKey != testKey || cfg.API.APIKeyFile != "" {
			t.Errorf("APIKey = %q, APIKeyFile = %q", cfg.API.APIKey, cfg.API.APIKeyFile)
		}
	})

	t.Run("invalid override fails validation", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHATCLIENT_LOGGING_FORMAT", "xml")

		if _, err := LoadConfigWithEnvOverrides(path); err == nil {
			t.Fatal("expected validation error for bad override")
		}
	})
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.API != first.API || cfg.ExchangeLog != first.ExchangeLog || cfg.Ask.Concurrency != first.Ask.Concurrency {
		t.Error("ApplyDefaults is not idempotent")
	}
	if cfg.ExchangeLog.DSN != DefaultExchangeLogDSN {
		t.Errorf("ExchangeLog.DSN = %q, want default", cfg.ExchangeLog.DSN)
	}
}

// Package config provides configuration loading for the chat client CLI.
//
// Configuration is read from a YAML (.yaml, .yml) or TOML (.toml) file,
// completed with defaults, overridden from the environment and validated.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("chatclient.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An empty path skips the file and starts from the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CHATCLIENT_SECTION_FIELD:
//
//   - CHATCLIENT_API_KEY overrides api.api_key
//   - CHATCLIENT_API_ORGANIZATION overrides api.organization
//   - CHATCLIENT_LOGGING_LEVEL overrides logging.level
//   - CHATCLIENT_EXCHANGE_LOG_DSN overrides exchange_log.dsn
//
// OPENAI_API_KEY is used as the key when no other source provides one.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every problem before failing:
//
//	configuration validation failed with 2 errors:
//	  - api.model: unknown model "gpt-9"
//	  - exchange_log.dsn: dsn is required for driver "mysql"
//
// # Example Configuration
//
//	api:
//	  api_key_file: "/run/secrets/openai"
//	  watch_key_file: true
//	  organization: "org-acme"
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
//	exchange_log:
//	  enabled: true
//	  driver: "sqlite"
//	  dsn: "data/exchanges.db"
//	  retention_days: 7
package config

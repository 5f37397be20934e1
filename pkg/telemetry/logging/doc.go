// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The package builds a standard *slog.Logger whose handler:
//   - writes JSON, text or console output
//   - masks API keys and bearer tokens in messages and string attributes
//   - fully masks values stored under sensitive keys such as "authorization"
//   - adds request_id and model from the context passed to the *Context methods
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "9f1c...")
//	logger.InfoContext(ctx, "request sent", "authorization", "Bearer sk-...")
//	// request_id=9f1c... authorization=Bear***
//
// Library packages log through slog.Default().With("component", ...), so
// installing the logger with slog.SetDefault is enough to route their output.
package logging

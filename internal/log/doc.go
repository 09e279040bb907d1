// Package log builds the slog loggers used by leadcrawl.
//
// Every logger returned by NewLogger is wrapped in a SecureHandler, which
// masks cookies, authorization headers and other credentials that may be
// configured per site before they reach the log output.
//
// # Formats
//
//   - text: slog's logfmt-style text handler
//   - json: slog's JSON handler, for log aggregation
//   - pretty: charmbracelet/log's colored terminal output
//
// # Usage
//
//	logger, err := log.NewLogger(os.Stderr, verbose, log.FormatPretty)
//	if err != nil {
//		return err
//	}
//	logger.Info("crawl started", "company", "Acme BV", "cookie", "consent=yes")
//	// cookie=***REDACTED***
package log

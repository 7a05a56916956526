// Package logger builds log/slog loggers for argos servers.
//
// Loggers are configured with options and decorated with context extractors,
// functions that pull request-scoped values (request ID, matched route) out
// of the context on every log call:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(filters.RequestIDExtractor(), argos.RouteExtractor()),
//	)
//	log.InfoContext(r.Context(), "order created")
//	// {"level":"INFO","msg":"order created","request_id":"…","route":"/orders"}
//
// With WithSentry, records are fanned out to stdout and Sentry. An empty DSN
// or a failed Sentry init falls back to stdout only.
package logger

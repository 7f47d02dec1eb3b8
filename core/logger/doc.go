// Package logger builds log/slog loggers and provides attribute helpers.
//
// New assembles a logger from options. WithDevelopment gives a debug-level
// text handler; WithProduction gives an info-level JSON handler. Context
// extractors add request-scoped attributes (request id, owner id) to every
// record logged with a context:
//
//	log := logger.New(
//		logger.WithProduction("typetrack"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(ctx, "session auto-closed",
//		logger.Component("activity"),
//		logger.SessionID(sess.ID),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty values, which
// slog drops, so callers never need nil checks.
package logger

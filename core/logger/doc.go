// Package logger provides structured logging helpers built on Go's standard slog package.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/relay/core/logger"
//
//	// Development: text format, debug level, source positions
//	log := logger.New(logger.WithDevelopment("relay"))
//
//	// Production: JSON format, info level
//	log := logger.New(logger.WithProduction("relay"))
//
//	// Custom configuration
//	log := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithOutput(os.Stderr),
//	)
//
// Components of the framework default to Nop, a logger that discards everything.
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for empty input, so they can be passed
// unconditionally:
//
//	log.Error("handler failed",
//		logger.Component("dispatcher"),
//		logger.Phase("dispatching"),
//		logger.Cursor(2),
//		logger.Error(err),
//	)
package logger

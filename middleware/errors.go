package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/router"
)

// ErrorLoggerConfig configures the error logging middleware.
type ErrorLoggerConfig struct {
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// Component name for structured logging
	Component string
}

// ErrorLogger creates an error handler that logs the failure and continues the
// error chain, so a later error handler can still write the response.
func ErrorLogger() handler.Handler {
	return ErrorLoggerWithConfig(ErrorLoggerConfig{})
}

// ErrorLoggerWithConfig creates an error logging middleware with custom configuration.
func ErrorLoggerWithConfig(cfg ErrorLoggerConfig) handler.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return handler.ErrorContinuable(func(err error, req *handler.Request, res handler.Response, next handler.Next) error {
		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("error"),
			logger.Method(req.Method()),
			logger.Path(req.Path),
			logger.Error(err),
		}
		if requestID, ok := GetRequestID(req); ok {
			attrs = append(attrs, logger.RequestID(requestID))
		}

		var pe router.PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, logger.StackTrace(pe.Stack()))
		}

		cfg.Logger.LogAttrs(req.Context(), slog.LevelError, "request failed", attrs...)

		next()
		return nil
	}).Named("error_logger")
}

// ErrorBody is the record written by ErrorJSON.
type ErrorBody struct {
	Status    int
	Error     string
	RequestID string
}

// ErrorJSONConfig configures the JSON error responder.
type ErrorJSONConfig struct {
	// StatusFunc maps a failure to a status code (default: 504 for handler
	// timeouts, 500 otherwise)
	StatusFunc func(err error) int
	// Expose writes the error message into the body; otherwise the status text is used
	Expose bool
}

// ErrorJSON creates a terminal error handler that writes an ErrorBody record.
func ErrorJSON() handler.Handler {
	return ErrorJSONWithConfig(ErrorJSONConfig{})
}

// ErrorJSONWithConfig creates a JSON error responder with custom configuration.
// The status is only applied when nothing has been written yet.
func ErrorJSONWithConfig(cfg ErrorJSONConfig) handler.Handler {
	if cfg.StatusFunc == nil {
		cfg.StatusFunc = defaultStatus
	}

	return handler.ErrorSimple(func(err error, req *handler.Request, res handler.Response) error {
		status := cfg.StatusFunc(err)

		body := ErrorBody{
			Status: status,
			Error:  http.StatusText(status),
		}
		if cfg.Expose {
			body.Error = err.Error()
		}
		if requestID, ok := GetRequestID(req); ok {
			body.RequestID = requestID
		}

		if !res.Written() {
			res.Status(status)
		}
		return res.JSON(body)
	}).Named("error_json")
}

func defaultStatus(err error) int {
	if errors.Is(err, router.ErrHandlerTimeout) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

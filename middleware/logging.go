package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/pkg/clientip"
)

// LoggingConfig configures the access logging middleware.
// It provides fine-grained control over what gets logged and how.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *handler.Request) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// LogRequest enables logging when the request enters the chain (default: true)
	LogRequest bool

	// LogResponse enables logging once the downstream chain has finished (default: true)
	LogResponse bool

	// LogRequestBody enables logging of request body (default: false for security).
	// The body is consumed; later handlers read it with GetRequestBody.
	LogRequestBody bool

	// LogHeaders enables logging of request/response headers (default: false for security)
	LogHeaders bool

	// MaxBodyLogSize is the maximum size of body to log in bytes (default: 4KB)
	MaxBodyLogSize int

	// SensitiveHeaders is a list of header names to redact (default: common auth headers)
	SensitiveHeaders []string

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

// requestBodyContextKey is used as a key for storing the buffered request body in request values.
type requestBodyContextKey struct{}

// statusReporter is implemented by response writers that track what was sent.
type statusReporter interface {
	StatusCode() int
	BytesWritten() int64
}

// Logging creates an access logging middleware with default configuration.
func Logging() handler.Handler {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) handler.Handler {
	return LoggingWithConfig(LoggingConfig{
		Logger: log,
	})
}

// LoggingWithConfig creates an access logging middleware with custom configuration.
// The completion entry is written after next returns, which is after the rest of
// the chain (including any error chain) has closed the response.
func LoggingWithConfig(cfg LoggingConfig) handler.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}

	// Default to logging request and response (but not bodies)
	if !cfg.LogRequest && !cfg.LogResponse {
		cfg.LogRequest = true
		cfg.LogResponse = true
	}

	if cfg.MaxBodyLogSize <= 0 {
		cfg.MaxBodyLogSize = 4 * 1024 // 4KB default
	}

	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"Authorization",
			"Cookie",
			"Set-Cookie",
			"X-Api-Key",
			"X-Auth-Token",
			"X-Csrf-Token",
		}
	}

	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}

	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		if cfg.Skip != nil && cfg.Skip(req) {
			next()
			return nil
		}

		start := time.Now()
		method := req.Method()

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("request"),
			logger.Method(method),
			logger.Path(req.Path),
			logger.RemoteAddr(clientip.GetIP(req.Header, req.RemoteAddr)),
		}

		if requestID, ok := GetRequestID(req); ok {
			attrs = append(attrs, logger.RequestID(requestID))
		}

		if raw := req.Query.Encode(); raw != "" {
			attrs = append(attrs, logger.Query(raw))
		}

		if cfg.LogRequestBody && req.Body != nil {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				cfg.Logger.LogAttrs(req.Context(), slog.LevelWarn, "failed to read request body",
					logger.Component(cfg.Component), logger.Path(req.Path), logger.Error(err))
			}
			req.SetValue(requestBodyContextKey{}, body)

			if len(body) > 0 {
				if len(body) > cfg.MaxBodyLogSize {
					body = body[:cfg.MaxBodyLogSize]
					attrs = append(attrs, slog.Bool("request_body_truncated", true))
				}
				attrs = append(attrs, slog.String("request_body", string(body)))
			}
		}

		if cfg.LogHeaders {
			if headers := redact(req.Header, cfg.SensitiveHeaders); len(headers) > 0 {
				attrs = append(attrs, slog.Any("request_headers", headers))
			}
		}

		if cfg.LogRequest {
			cfg.Logger.LogAttrs(req.Context(), cfg.LogLevel, "HTTP request started", attrs...)
		}

		next()

		if !cfg.LogResponse {
			return nil
		}

		duration := time.Since(start)
		status, size := http.StatusOK, int64(0)
		if sr, ok := res.(statusReporter); ok {
			status, size = sr.StatusCode(), sr.BytesWritten()
		}

		respAttrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("response"),
			logger.Method(method),
			logger.Path(req.Path),
			logger.StatusCode(status),
			logger.BytesOut(size),
			logger.Duration(duration),
		}

		if requestID, ok := GetRequestID(req); ok {
			respAttrs = append(respAttrs, logger.RequestID(requestID))
		}

		if cfg.LogHeaders {
			if headers := redact(res.Header(), cfg.SensitiveHeaders); len(headers) > 0 {
				respAttrs = append(respAttrs, slog.Any("response_headers", headers))
			}
		}

		// Determine log level based on status and duration
		level := cfg.LogLevel
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case duration > cfg.SlowRequestThreshold:
			level = slog.LevelWarn
			respAttrs = append(respAttrs, slog.Bool("slow_request", true))
		}

		cfg.Logger.LogAttrs(req.Context(), level, "HTTP request completed", respAttrs...)
		return nil
	}).Named("logging")
}

// GetRequestBody returns the request body buffered by the logging middleware.
// It reports false when body logging was disabled for the request.
func GetRequestBody(req *handler.Request) ([]byte, bool) {
	body, ok := req.Value(requestBodyContextKey{}).([]byte)
	return body, ok
}

func redact(h http.Header, sensitive []string) map[string]any {
	headers := make(map[string]any, len(h))
	for key, values := range h {
		switch {
		case slices.Contains(sensitive, key):
			headers[key] = "[REDACTED]"
		case len(values) == 1:
			headers[key] = values[0]
		default:
			headers[key] = values
		}
	}
	return headers
}

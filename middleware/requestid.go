package middleware

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/core/handler"
)

// requestIDContextKey is used as a key for storing the request ID in request values.
type requestIDContextKey struct{}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *handler.Request) bool
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting determines whether to use an existing request ID from the incoming request
	UseExisting bool
}

// RequestID creates a request ID middleware with default configuration.
// It generates a new UUID for each request and exposes it in request values and
// the response headers.
func RequestID() handler.Handler {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig creates a request ID middleware with custom configuration.
// The header is set before the chain continues, so it is sent with the first write
// of any downstream handler.
func RequestIDWithConfig(cfg RequestIDConfig) handler.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}

	if cfg.Generator == nil {
		cfg.Generator = func() string {
			return uuid.New().String()
		}
	}

	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		if cfg.Skip != nil && cfg.Skip(req) {
			next()
			return nil
		}

		var requestID string

		// Try to use existing request ID from incoming headers if configured
		if cfg.UseExisting {
			if existingID := req.Header.Get(cfg.HeaderName); existingID != "" {
				requestID = existingID
			}
		}

		if requestID == "" {
			requestID = cfg.Generator()
		}

		req.SetValue(requestIDContextKey{}, requestID)
		res.Header().Set(cfg.HeaderName, requestID)

		next()
		return nil
	}).Named("request_id")
}

// GetRequestID retrieves the request ID from the request values.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(req *handler.Request) (string, bool) {
	id, ok := req.Value(requestIDContextKey{}).(string)
	return id, ok
}

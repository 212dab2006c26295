package middleware

import (
	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/pkg/clientip"
)

// clientIPContextKey is used as a key for storing client IP in request values.
type clientIPContextKey struct{}

// ClientIPConfig configures the client IP extraction middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *handler.Request) bool
	// HeaderName specifies the response header name for the client IP (default: "X-Client-IP")
	HeaderName string
	// StoreInHeader determines whether to include the IP in response headers
	StoreInHeader bool
	// ValidateFunc rejects a request by returning an error, which enters the error chain
	ValidateFunc func(req *handler.Request, ip string) error
}

// ClientIP creates a client IP extraction middleware with default configuration.
func ClientIP() handler.Handler {
	return ClientIPWithConfig(ClientIPConfig{})
}

// ClientIPWithConfig creates a client IP extraction middleware with custom configuration.
// It extracts the real client IP address from proxy headers (X-Forwarded-For, X-Real-IP, etc.)
// and stores it in request values, optionally validating it or echoing it in a header.
func ClientIPWithConfig(cfg ClientIPConfig) handler.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}

	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		if cfg.Skip != nil && cfg.Skip(req) {
			next()
			return nil
		}

		ip := clientip.GetIP(req.Header, req.RemoteAddr)
		req.SetValue(clientIPContextKey{}, ip)

		if cfg.ValidateFunc != nil {
			if err := cfg.ValidateFunc(req, ip); err != nil {
				return err
			}
		}

		if cfg.StoreInHeader {
			res.Header().Set(cfg.HeaderName, ip)
		}

		next()
		return nil
	}).Named("client_ip")
}

// GetClientIP retrieves the client IP address from the request values.
// Returns the IP address and a boolean indicating whether it was found.
func GetClientIP(req *handler.Request) (string, bool) {
	ip, ok := req.Value(clientIPContextKey{}).(string)
	return ip, ok
}

package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/relay/core/handler"
)

// CORSConfig defines configuration options for CORS middleware.
type CORSConfig struct {
	// Skip allows bypassing CORS handling for specific requests
	Skip func(req *handler.Request) bool

	// AllowOrigins specifies allowed origins. Use "*" for all origins.
	// If empty, defaults to allowing all origins ("*")
	AllowOrigins []string

	// AllowMethods specifies allowed HTTP methods.
	// If empty, defaults to GET, HEAD, PUT, PATCH, POST, DELETE
	AllowMethods []string

	// AllowHeaders specifies allowed request headers.
	// If empty, defaults to common headers including Authorization and Content-Type
	AllowHeaders []string

	// ExposeHeaders specifies which headers are exposed to the client
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials are allowed.
	// Never sent together with a wildcard origin.
	AllowCredentials bool

	// MaxAge specifies how long preflight requests can be cached (in seconds)
	MaxAge int

	// AllowOriginFunc provides custom origin validation logic and takes precedence
	// over AllowOrigins. Returns the origin value to send and whether it is allowed.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS returns a CORS middleware that allows all origins, common methods and
// standard headers. Use CORSWithConfig with explicit origins in production.
func CORS() handler.Handler {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig returns a CORS middleware with custom configuration.
//
// A preflight request (OPTIONS with Access-Control-Request-Method) is answered
// directly: the handler sets the status and returns without calling next, so the
// chain ends there. Any other request gets the CORS headers and continues.
//
//	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
//		AllowOrigins:     []string{"https://app.example.com"},
//		AllowCredentials: true,
//		MaxAge:           86400,
//	}))
func CORSWithConfig(cfg CORSConfig) handler.Handler {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}

	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	allowOriginsMap := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOriginsMap[origin] = true
	}

	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		if cfg.Skip != nil && cfg.Skip(req) {
			next()
			return nil
		}

		origin := req.Header.Get("Origin")

		var allowedOrigin string
		allowed := false

		// Origin validation priority: custom function > wildcard/empty > explicit list
		if cfg.AllowOriginFunc != nil {
			allowedOrigin, allowed = cfg.AllowOriginFunc(origin)
		} else if len(cfg.AllowOrigins) == 0 || allowOriginsMap["*"] {
			allowedOrigin = "*"
			allowed = true
		} else if allowOriginsMap[origin] {
			allowedOrigin = origin
			allowed = true
		}

		headers := res.Header()
		requestMethod := req.Header.Get("Access-Control-Request-Method")

		if req.Method() == http.MethodOptions && requestMethod != "" {
			if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
				res.Status(http.StatusForbidden)
				return nil
			}

			headers.Set("Access-Control-Allow-Origin", allowedOrigin)
			headers.Set("Access-Control-Allow-Methods", allowMethods)

			if req.Header.Get("Access-Control-Request-Headers") != "" {
				headers.Set("Access-Control-Allow-Headers", allowHeaders)
			}

			// Credentials must not be combined with a wildcard origin
			if cfg.AllowCredentials && allowedOrigin != "*" {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}

			if cfg.MaxAge > 0 {
				headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}

			headers.Add("Vary", "Origin")
			headers.Add("Vary", "Access-Control-Request-Method")
			headers.Add("Vary", "Access-Control-Request-Headers")

			res.Status(http.StatusNoContent)
			return nil
		}

		if allowed {
			headers.Set("Access-Control-Allow-Origin", allowedOrigin)

			if cfg.AllowCredentials && allowedOrigin != "*" {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}

			if exposeHeaders != "" {
				headers.Set("Access-Control-Expose-Headers", exposeHeaders)
			}

			headers.Add("Vary", "Origin")
		}

		next()
		return nil
	}).Named("cors")
}

// AllowOriginWildcard returns an AllowOriginFunc that allows any non-empty origin
// and echoes it back, so credentials can still be allowed.
func AllowOriginWildcard() func(origin string) (string, bool) {
	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		return origin, true
	}
}

// AllowOriginSubdomain returns an AllowOriginFunc that allows domain and all its
// subdomains, with or without a port. domain is given without a scheme.
func AllowOriginSubdomain(domain string) func(origin string) (string, bool) {
	domain = strings.TrimPrefix(domain, "*.")
	domain = strings.TrimPrefix(domain, ".")
	domain = strings.ToLower(domain)
	domainWithDot := "." + domain

	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}

		host := strings.ToLower(u.Hostname())
		if host == domain || strings.HasSuffix(host, domainWithDot) {
			return origin, true
		}

		return "", false
	}
}

package middleware

import (
	"maps"

	"github.com/dmitrymomot/relay/core/handler"
)

// SecurityHeadersConfig configures the security headers middleware.
type SecurityHeadersConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *handler.Request) bool

	// ContentTypeOptions controls X-Content-Type-Options header
	ContentTypeOptions string

	// FrameOptions controls X-Frame-Options header
	FrameOptions string

	// XSSProtection controls X-XSS-Protection header
	XSSProtection string

	// StrictTransportSecurity controls Strict-Transport-Security header
	StrictTransportSecurity string

	// ContentSecurityPolicy controls Content-Security-Policy header
	ContentSecurityPolicy string

	// ReferrerPolicy controls Referrer-Policy header
	ReferrerPolicy string

	// PermissionsPolicy controls Permissions-Policy header
	PermissionsPolicy string

	// CrossOriginOpenerPolicy controls Cross-Origin-Opener-Policy header
	CrossOriginOpenerPolicy string

	// CrossOriginEmbedderPolicy controls Cross-Origin-Embedder-Policy header
	CrossOriginEmbedderPolicy string

	// CrossOriginResourcePolicy controls Cross-Origin-Resource-Policy header
	CrossOriginResourcePolicy string

	// CustomHeaders allows adding additional custom security headers
	CustomHeaders map[string]string

	// IsDevelopment disables HSTS
	IsDevelopment bool
}

// Predefined security configurations
var (
	// StrictSecurity blocks framing, external resources and inline content.
	StrictSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "DENY",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:     "default-src 'none'; script-src 'self'; style-src 'self'; img-src 'self'; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		ReferrerPolicy:            "no-referrer",
		PermissionsPolicy:         "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginResourcePolicy: "same-origin",
	}

	// BalancedSecurity is the default used by SecurityHeaders.
	BalancedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "SAMEORIGIN",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionsPolicy:         "geolocation=(), microphone=(), camera=()",
		CrossOriginOpenerPolicy:   "same-origin-allow-popups",
		CrossOriginResourcePolicy: "cross-origin",
	}

	// RelaxedSecurity sets only the headers that never break pages.
	RelaxedSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		XSSProtection:      "1; mode=block",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// DevelopmentSecurity is for local development only.
	DevelopmentSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		XSSProtection:      "1; mode=block",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	}
)

// SecurityHeaders creates a security headers middleware with BalancedSecurity.
func SecurityHeaders() handler.Handler {
	return SecurityHeadersWithConfig(BalancedSecurity)
}

// SecurityHeadersStrict creates a security headers middleware with StrictSecurity.
func SecurityHeadersStrict() handler.Handler {
	return SecurityHeadersWithConfig(StrictSecurity)
}

// SecurityHeadersRelaxed creates a security headers middleware with RelaxedSecurity.
func SecurityHeadersRelaxed() handler.Handler {
	return SecurityHeadersWithConfig(RelaxedSecurity)
}

// SecurityHeadersWithConfig creates a security headers middleware with custom configuration.
// Headers are set before the chain continues, so they go out with the first write.
//
//	cfg := middleware.BalancedSecurity
//	cfg.CustomHeaders = map[string]string{"X-Rate-Limit-Policy": "standard"}
//	app.Use(middleware.SecurityHeadersWithConfig(cfg))
func SecurityHeadersWithConfig(cfg SecurityHeadersConfig) handler.Handler {
	if cfg.IsDevelopment {
		cfg.StrictTransportSecurity = ""
	}

	headers := make(map[string]string)
	set := func(name, value string) {
		if value != "" {
			headers[name] = value
		}
	}
	set("X-Content-Type-Options", cfg.ContentTypeOptions)
	set("X-Frame-Options", cfg.FrameOptions)
	set("X-XSS-Protection", cfg.XSSProtection)
	set("Strict-Transport-Security", cfg.StrictTransportSecurity)
	set("Content-Security-Policy", cfg.ContentSecurityPolicy)
	set("Referrer-Policy", cfg.ReferrerPolicy)
	set("Permissions-Policy", cfg.PermissionsPolicy)
	set("Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy)
	set("Cross-Origin-Embedder-Policy", cfg.CrossOriginEmbedderPolicy)
	set("Cross-Origin-Resource-Policy", cfg.CrossOriginResourcePolicy)

	maps.Copy(headers, cfg.CustomHeaders)

	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		if cfg.Skip == nil || !cfg.Skip(req) {
			h := res.Header()
			for key, value := range headers {
				h.Set(key, value)
			}
		}

		next()
		return nil
	}).Named("security_headers")
}

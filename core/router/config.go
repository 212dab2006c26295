package router

import "time"

// Config holds router configuration with environment variable support.
type Config struct {
	// DispatchTimeout bounds how long suspending handlers may run per request. Zero disables it.
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"0s"`
}

// NewFromConfig creates a Router from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, opts ...Option) Router {
	configOpts := make([]Option, 0, len(opts)+1)
	if cfg.DispatchTimeout > 0 {
		configOpts = append(configOpts, WithTimeout(cfg.DispatchTimeout))
	}
	return New(append(configOpts, opts...)...)
}

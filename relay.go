// Package relay assembles a prefix-routed middleware application from the core
// packages: handlers are registered against path prefixes on a router, and a
// server feeds every accepted request through the matched handler chain.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/core/server"
)

// Config is the application configuration loaded from the environment.
type Config struct {
	Router router.Config
	Server server.Config
}

// App couples a handler registry with the connection front end.
type App struct {
	config Config
	router router.Router
	server *server.Server
	logger *slog.Logger
}

// Option configures an App.
type Option func(*App) error

// New creates an App configured from the environment. Options are applied after
// the configuration is loaded and may replace any component.
func New(opts ...Option) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.router == nil {
		app.router = router.NewFromConfig(app.config.Router, router.WithLogger(app.logger))
	}

	if app.server == nil {
		app.server = server.NewFromConfig(app.config.Server, app.router, server.WithLogger(app.logger))
	}

	return app, nil
}

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(app *App) error {
		app.config = cfg
		return nil
	}
}

// WithLogger sets the logger shared by the router and the server.
func WithLogger(logger *slog.Logger) Option {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

// WithRouter replaces the default router.
func WithRouter(r router.Router) Option {
	return func(app *App) error {
		if r == nil {
			return errors.New("router cannot be nil")
		}
		app.router = r
		return nil
	}
}

// WithServer replaces the default server. The server must serve the app's router.
func WithServer(s *server.Server) Option {
	return func(app *App) error {
		if s == nil {
			return errors.New("server cannot be nil")
		}
		app.server = s
		return nil
	}
}

// Use registers handlers under the root prefix "/", so they match every request.
func (a *App) Use(handlers ...handler.Handler) {
	a.router.Use(handlers...)
}

// Register appends handlers to the entry for prefix.
// It panics if prefix does not start with "/" or after Listen.
func (a *App) Register(prefix string, handlers ...handler.Handler) {
	a.router.Register(prefix, handlers...)
}

// Listen freezes registration and starts accepting connections on port.
func (a *App) Listen(port int) error {
	return a.server.Listen(port)
}

// Wait blocks until the server stops.
func (a *App) Wait() error {
	return a.server.Wait()
}

// Stop shuts the server down gracefully.
func (a *App) Stop() error {
	return a.server.Stop()
}

// Run listens on the configured port and stops when ctx is canceled.
// Suitable for errgroup.
func (a *App) Run(ctx context.Context) func() error {
	return a.server.Run(ctx, a.config.Server.Port)
}

// Addr returns the bound address, or an empty string before Listen.
func (a *App) Addr() string {
	return a.server.Addr()
}

// Port returns the bound port, or 0 before Listen.
func (a *App) Port() int {
	return a.server.Port()
}

// Routes returns the registered prefixes with their handler names.
func (a *App) Routes() []router.Route {
	return a.router.Routes()
}

// Router returns the underlying router.
func (a *App) Router() router.Router {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.config
}

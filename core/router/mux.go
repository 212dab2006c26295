package router

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
)

// mux is the private implementation of Router interface.
// It is the front end between net/http and the dispatcher.
type mux struct {
	registry   *Registry
	dispatcher *Dispatcher
	logger     *slog.Logger
	timeout    time.Duration
}

// newMux creates a new router instance.
func newMux(opts ...Option) *mux {
	m := &mux{
		registry: NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(m)
	}

	m.dispatcher = NewDispatcher(
		WithDispatcherLogger(m.logger),
		WithDispatcherTimeout(m.timeout),
	)

	return m
}

// ServeHTTP implements http.Handler interface.
func (m *mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := handler.NewRequest(r)
	res := response.New(w)

	handlers := m.registry.Match(req.Path)
	if len(handlers) == 0 {
		m.logger.Debug("no route prefix matched",
			logger.Component("router"),
			logger.Method(req.Method()),
			logger.Path(req.Path),
		)
	}

	m.dispatcher.Dispatch(req, res, handlers)
}

// Use registers handlers under the root prefix.
func (m *mux) Use(handlers ...handler.Handler) {
	m.registry.Register("/", handlers...)
}

// Register appends handlers to the entry for prefix.
func (m *mux) Register(prefix string, handlers ...handler.Handler) {
	m.registry.Register(prefix, handlers...)
}

// Freeze ends the registration phase.
func (m *mux) Freeze() {
	m.registry.Freeze()
}

// Routes returns all registered prefixes with their handler names.
func (m *mux) Routes() []Route {
	entries := m.registry.Entries()
	routes := make([]Route, 0, len(entries))
	for _, e := range entries {
		names := make([]string, len(e.Handlers))
		for i, h := range e.Handlers {
			names[i] = h.Name()
		}
		routes = append(routes, Route{Prefix: e.Prefix, Handlers: names})
	}
	return routes
}

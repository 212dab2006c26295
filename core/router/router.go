package router

import (
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
)

// Router registers handlers under route prefixes and serves HTTP requests by
// dispatching the handlers whose prefix matches the request path.
type Router interface {
	http.Handler
	Routes

	// Use registers handlers under the root prefix "/".
	Use(handlers ...handler.Handler)
	// Register appends handlers to the entry for prefix.
	Register(prefix string, handlers ...handler.Handler)
	// Freeze ends the registration phase. Servers call it before accepting connections.
	Freeze()
}

// Routes provides route introspection capabilities for debugging and monitoring.
type Routes interface {
	Routes() []Route
}

// Route describes one registered prefix and its handlers in execution order.
type Route struct {
	Prefix   string
	Handlers []string
}

// New creates a new router with the given options.
func New(opts ...Option) Router {
	return newMux(opts...)
}

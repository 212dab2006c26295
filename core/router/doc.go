// Package router matches requests to handlers by route prefix and executes them
// as an ordered chain with explicit continuation control.
//
// # Registration
//
// Handlers are registered under literal path prefixes before the server starts:
//
//	r := router.New(router.WithLogger(log))
//
//	r.Use(middleware.RequestID())             // prefix "/"
//	r.Register("/api", authenticate, listUsers)
//	r.Use(middleware.ErrorJSON())
//
// Registration order matters. For a request path, every prefix that is a
// byte-wise prefix of the path contributes its handlers, prefixes in the order
// they were first registered and handlers in the order they were added. There
// is no most-specific-wins rule and no path parameters.
//
// Freeze ends registration; a later Register panics with ErrRegistryFrozen. The
// server freezes the router before accepting its first connection, after which
// the registry is read without locks.
//
// # Dispatch
//
// The Dispatcher walks the matched list:
//
//   - A simple handler runs and the response is closed. Nothing after it runs.
//   - A continuable handler runs; if it calls next, the following handler runs
//     inside that call. If it returns without calling next, the response is closed.
//   - Error handlers are skipped.
//
// When a handler returns an error or panics, the error handlers of the whole
// matched list run as a new chain with the failure passed to each. If there are
// none, the response is closed with no body and the error is logged as swallowed.
// A failure inside the error chain closes the response.
//
// The response is closed exactly once per request, by the dispatcher.
//
// # Deadlines
//
// WithTimeout bounds a request. Suspending handlers (see handler.Handler.Suspending)
// are awaited against the deadline and abandoned with ErrHandlerTimeout when it
// expires; the failure then goes through the error chain, which gets a fresh deadline.
// Non-suspending handlers run inline and cannot be interrupted.
package router

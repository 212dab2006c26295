package handler

import (
	"errors"
	"fmt"
)

// ErrNilFunc is raised when a handler is constructed from a nil function.
var ErrNilFunc = errors.New("handler function cannot be nil")

// Kind tags the capability shape of a Handler.
type Kind uint8

const (
	// KindSimple handles a request and always terminates the chain.
	KindSimple Kind = iota + 1
	// KindContinuable handles a request and may advance the chain via Next.
	KindContinuable
	// KindErrorSimple handles a failure and always terminates the error chain.
	KindErrorSimple
	// KindErrorContinuable handles a failure and may advance the error chain via Next.
	KindErrorContinuable
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindContinuable:
		return "continuable"
	case KindErrorSimple:
		return "error_simple"
	case KindErrorContinuable:
		return "error_continuable"
	default:
		return "unknown"
	}
}

// Next advances the chain to the following handler.
// Failures of downstream handlers are handled downstream, so Next reports nothing.
type Next func()

// SimpleFunc consumes a request and writes the response.
type SimpleFunc func(req *Request, res Response) error

// ContinuableFunc consumes a request and may call next to continue the chain.
type ContinuableFunc func(req *Request, res Response, next Next) error

// ErrorSimpleFunc consumes a failure raised by an earlier handler.
type ErrorSimpleFunc func(err error, req *Request, res Response) error

// ErrorContinuableFunc consumes a failure and may call next to continue the error chain.
type ErrorContinuableFunc func(err error, req *Request, res Response, next Next) error

// Handler is a unit of request-processing logic with exactly one of four shapes.
// The zero value is not a valid handler. Handlers are immutable values.
type Handler struct {
	kind     Kind
	suspends bool
	name     string

	simple           SimpleFunc
	continuable      ContinuableFunc
	errorSimple      ErrorSimpleFunc
	errorContinuable ErrorContinuableFunc
}

// Simple creates a handler that terminates the chain once it returns.
func Simple(fn SimpleFunc) Handler {
	if fn == nil {
		panic(fmt.Errorf("%w: simple", ErrNilFunc))
	}
	return Handler{kind: KindSimple, simple: fn}
}

// Continuable creates a handler that may continue the chain by calling next.
func Continuable(fn ContinuableFunc) Handler {
	if fn == nil {
		panic(fmt.Errorf("%w: continuable", ErrNilFunc))
	}
	return Handler{kind: KindContinuable, continuable: fn}
}

// ErrorSimple creates an error handler that terminates the error chain once it returns.
func ErrorSimple(fn ErrorSimpleFunc) Handler {
	if fn == nil {
		panic(fmt.Errorf("%w: error simple", ErrNilFunc))
	}
	return Handler{kind: KindErrorSimple, errorSimple: fn}
}

// ErrorContinuable creates an error handler that may continue the error chain.
func ErrorContinuable(fn ErrorContinuableFunc) Handler {
	if fn == nil {
		panic(fmt.Errorf("%w: error continuable", ErrNilFunc))
	}
	return Handler{kind: KindErrorContinuable, errorContinuable: fn}
}

// Suspending returns a copy of the handler marked as one that may block on I/O.
// The dispatcher runs suspending handlers on a future and awaits them against
// the request context, so a deadline can abandon them.
func (h Handler) Suspending() Handler {
	h.suspends = true
	return h
}

// Named returns a copy of the handler carrying a diagnostic name.
func (h Handler) Named(name string) Handler {
	h.name = name
	return h
}

// Name returns the diagnostic name, or the kind name when none was set.
func (h Handler) Name() string {
	if h.name != "" {
		return h.name
	}
	return h.kind.String()
}

// Kind returns the capability shape.
func (h Handler) Kind() Kind { return h.kind }

// Suspends reports whether the handler may suspend before completing.
func (h Handler) Suspends() bool { return h.suspends }

// IsZero reports whether h was not built by one of the constructors.
func (h Handler) IsZero() bool { return h.kind == 0 }

// AcceptsError reports whether the handler is only selected after a failure.
func (h Handler) AcceptsError() bool {
	return h.kind == KindErrorSimple || h.kind == KindErrorContinuable
}

// AcceptsNext reports whether the handler receives a continuation.
func (h Handler) AcceptsNext() bool {
	return h.kind == KindContinuable || h.kind == KindErrorContinuable
}

// Invoke calls the underlying function with the arguments its shape consumes.
// err is ignored by request shapes and next is ignored by simple shapes.
func (h Handler) Invoke(err error, req *Request, res Response, next Next) error {
	switch h.kind {
	case KindSimple:
		return h.simple(req, res)
	case KindContinuable:
		return h.continuable(req, res, next)
	case KindErrorSimple:
		return h.errorSimple(err, req, res)
	case KindErrorContinuable:
		return h.errorContinuable(err, req, res, next)
	default:
		panic(fmt.Sprintf("handler: invoke of invalid kind %d", h.kind))
	}
}

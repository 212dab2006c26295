package router

import (
	"errors"
	"fmt"
)

var (
	// Registry errors
	ErrInvalidPrefix  = errors.New("route prefix must begin with '/'")
	ErrZeroHandler    = errors.New("zero handler")
	ErrRegistryFrozen = errors.New("registry is frozen: handlers must be registered before listening")

	// Dispatch errors
	ErrHandlerTimeout = errors.New("handler did not complete before the dispatch deadline")
)

// PanicError interface allows error handlers to detect recovered panics.
// When a handler panics, the dispatcher wraps the value in an error that
// implements this interface and routes it into the error chain.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

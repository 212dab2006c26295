package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/pkg/async"
)

// Phase is the dispatch phase of one request.
type Phase uint8

const (
	// PhaseDispatching runs simple and continuable handlers.
	PhaseDispatching Phase = iota
	// PhaseRecovering runs error handlers after a failure.
	PhaseRecovering
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	if p == PhaseRecovering {
		return "recovering"
	}
	return "dispatching"
}

// Stream is the response as owned by the dispatcher.
// Handlers only see the embedded handler.Response.
type Stream interface {
	handler.Response
	Close() error
	Closed() bool
}

// Dispatcher executes matched handler lists.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	logger  *slog.Logger
	timeout time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger used for failures and ignored continuations.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatcherTimeout sets a per-request deadline. Zero disables it.
// Only suspending handlers can be abandoned when it expires.
func WithDispatcherTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher creates a Dispatcher with a no-op logger and no deadline.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs handlers against req and res and returns once res is closed.
//
// Handlers run strictly in list order. A simple handler ends the chain; a
// continuable handler ends it unless it calls next. Error handlers are skipped.
// When a handler fails, the error-shaped handlers of the full list run as a
// fresh chain with the failure threaded through. A failure inside that chain
// force-closes the response.
func (d *Dispatcher) Dispatch(req *handler.Request, res Stream, handlers []handler.Handler) {
	ctx, cancel := d.deadline(req.Context())
	defer cancel()

	c := &chain{
		d:        d,
		req:      req.WithContext(ctx),
		res:      res,
		matched:  handlers,
		handlers: handlers,
		phase:    PhaseDispatching,
	}
	c.run(0)
}

func (d *Dispatcher) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout > 0 {
		return context.WithTimeout(ctx, d.timeout)
	}
	return context.WithCancel(ctx)
}

// chain is the dispatch context of one phase of one request.
type chain struct {
	d        *Dispatcher
	req      *handler.Request
	res      Stream
	matched  []handler.Handler
	handlers []handler.Handler
	phase    Phase
	err      error
}

// run executes the handler at cursor, skipping shapes that do not belong to the phase.
func (c *chain) run(cursor int) {
	for cursor < len(c.handlers) && !c.selects(c.handlers[cursor]) {
		cursor++
	}
	if cursor >= len(c.handlers) {
		c.close()
		return
	}

	h := c.handlers[cursor]
	continued, err := c.invoke(h, cursor)
	if err != nil {
		c.fail(h, cursor, err)
		return
	}
	if !continued {
		c.close()
	}
}

func (c *chain) selects(h handler.Handler) bool {
	return h.AcceptsError() == (c.phase == PhaseRecovering)
}

// invoke calls h and reports whether it handed the chain over via next.
// When it did, invoke returns only after the downstream chain has finished.
func (c *chain) invoke(h handler.Handler, cursor int) (bool, error) {
	f := &frame{nextDone: make(chan struct{})}

	var next handler.Next
	if h.AcceptsNext() {
		next = func() {
			if !f.claim() {
				c.log(h, cursor).Warn("continuation ignored: handler already continued or returned")
				return
			}
			defer close(f.nextDone)
			c.run(cursor + 1)
		}
	}

	var err error
	if h.Suspends() {
		ctx := c.req.Context()
		future := async.Exec(ctx, func(context.Context) error {
			return c.call(h, next)
		})
		if err = future.AwaitContext(ctx); !future.IsComplete() {
			if f.seal() {
				return false, abandoned(ctx, h)
			}
			// the handler already continued; the downstream chain owns the outcome
			err = nil
		} else {
			err = future.Err()
		}
	} else {
		err = c.call(h, next)
	}

	if f.seal() {
		return false, err
	}
	<-f.nextDone
	return true, err
}

// call invokes h, turning a panic into a PanicError.
func (c *chain) call(h handler.Handler, next handler.Next) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()
	return h.Invoke(c.err, c.req, c.res, next)
}

// fail routes a handler failure according to the phase.
func (c *chain) fail(h handler.Handler, cursor int, err error) {
	log := c.log(h, cursor)
	attrs := []any{logger.Error(err)}
	var pe PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, logger.StackTrace(pe.Stack()))
	}

	if c.phase == PhaseRecovering {
		log.Error("error handler failed, closing response", attrs...)
		c.close()
		return
	}

	if c.res.Closed() {
		log.Error("handler failed after response was closed", attrs...)
		return
	}

	recovery := errorHandlers(c.matched)
	if len(recovery) == 0 {
		log.Warn("no error handler matched, error swallowed", attrs...)
	} else {
		log.Debug("switching to error chain", append(attrs, logger.Handlers(len(recovery)))...)
	}

	ctx, cancel := c.d.deadline(context.WithoutCancel(c.req.Context()))
	defer cancel()

	rc := &chain{
		d:        c.d,
		req:      c.req.WithContext(ctx),
		res:      c.res,
		matched:  c.matched,
		handlers: recovery,
		phase:    PhaseRecovering,
		err:      err,
	}
	rc.run(0)
}

func (c *chain) close() {
	if err := c.res.Close(); err != nil {
		c.d.logger.Error("failed to close response",
			logger.Component("dispatcher"),
			logger.Path(c.req.Path),
			logger.Error(err),
		)
	}
}

func (c *chain) log(h handler.Handler, cursor int) *slog.Logger {
	return c.d.logger.With(
		logger.Component("dispatcher"),
		logger.Phase(c.phase.String()),
		logger.Cursor(cursor),
		logger.Handler(h.Name()),
		logger.Method(c.req.Method()),
		logger.Path(c.req.Path),
	)
}

// errorHandlers keeps the error-shaped handlers of list, preserving order.
func errorHandlers(list []handler.Handler) []handler.Handler {
	var out []handler.Handler
	for _, h := range list {
		if h.AcceptsError() {
			out = append(out, h)
		}
	}
	return out
}

func abandoned(ctx context.Context, h handler.Handler) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrHandlerTimeout, h.Name())
	}
	return fmt.Errorf("handler %s abandoned: %w", h.Name(), ctx.Err())
}

const (
	framePending uint32 = iota
	frameContinued
	frameSealed
)

// frame records whether a handler continued the chain. Exactly one of claim
// (by next) and seal (by the dispatcher) wins.
type frame struct {
	state    atomic.Uint32
	nextDone chan struct{}
}

func (f *frame) claim() bool {
	return f.state.CompareAndSwap(framePending, frameContinued)
}

func (f *frame) seal() bool {
	if f.state.CompareAndSwap(framePending, frameSealed) {
		return true
	}
	return f.state.Load() == frameSealed
}

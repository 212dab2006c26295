package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// trace records handler executions in order.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(ev string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, ev)
}

func (tr *trace) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func simple(tr *trace, name string) handler.Handler {
	return handler.Simple(func(req *handler.Request, res handler.Response) error {
		tr.add(name)
		return res.Send(name + ";")
	}).Named(name)
}

func passing(tr *trace, name string) handler.Handler {
	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		tr.add(name)
		if err := res.Send(name + ";"); err != nil {
			return err
		}
		next()
		return nil
	}).Named(name)
}

func stopping(tr *trace, name string) handler.Handler {
	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		tr.add(name)
		return nil
	}).Named(name)
}

func failing(tr *trace, name string, err error) handler.Handler {
	return handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
		tr.add(name)
		return err
	}).Named(name)
}

func recovering(tr *trace, name string, seen *[]error) handler.Handler {
	return handler.ErrorContinuable(func(err error, req *handler.Request, res handler.Response, next handler.Next) error {
		tr.add(name)
		*seen = append(*seen, err)
		next()
		return nil
	}).Named(name)
}

func terminal(tr *trace, name string, seen *[]error) handler.Handler {
	return handler.ErrorSimple(func(err error, req *handler.Request, res handler.Response) error {
		tr.add(name)
		*seen = append(*seen, err)
		return res.Send(name + ";")
	}).Named(name)
}

func dispatch(t *testing.T, d *router.Dispatcher, handlers ...handler.Handler) (*httptest.ResponseRecorder, *response.Writer) {
	t.Helper()

	rec := httptest.NewRecorder()
	res := response.New(rec)
	req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	d.Dispatch(req, res, handlers)
	return rec, res
}

func TestDispatchNormalPhase(t *testing.T) {
	t.Parallel()

	t.Run("continuable then simple runs both and closes", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		rec, res := dispatch(t, router.NewDispatcher(),
			passing(tr, "A"),
			simple(tr, "B"),
			simple(tr, "C"),
		)

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.Equal(t, "A;B;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("simple handler terminates the chain wherever it sits", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		rec, res := dispatch(t, router.NewDispatcher(),
			simple(tr, "first"),
			passing(tr, "never1"),
			simple(tr, "never2"),
		)

		assert.Equal(t, []string{"first"}, tr.list())
		assert.Equal(t, "first;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("continuable without next closes and stops", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		_, res := dispatch(t, router.NewDispatcher(),
			passing(tr, "A"),
			stopping(tr, "B"),
			simple(tr, "C"),
		)

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.True(t, res.Closed())
	})

	t.Run("exhausted chain closes", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		rec, res := dispatch(t, router.NewDispatcher(), passing(tr, "A"), passing(tr, "B"))

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.Equal(t, "A;B;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("empty list closes with no body", func(t *testing.T) {
		t.Parallel()

		rec, res := dispatch(t, router.NewDispatcher())

		assert.True(t, res.Closed())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("error shapes are skipped in the normal phase", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		rec, _ := dispatch(t, router.NewDispatcher(),
			terminal(tr, "E1", &seen),
			passing(tr, "A"),
			recovering(tr, "E2", &seen),
			simple(tr, "B"),
		)

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.Equal(t, "A;B;", rec.Body.String())
		assert.Empty(t, seen)
	})

	t.Run("next called twice advances once", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		twice := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			tr.add("A")
			next()
			next()
			return nil
		})

		_, res := dispatch(t, router.NewDispatcher(), twice, simple(tr, "B"))

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.True(t, res.Closed())
	})

	t.Run("next after the handler returned is ignored", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var late handler.Next
		keep := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			tr.add("A")
			late = next
			return nil
		})

		_, res := dispatch(t, router.NewDispatcher(), keep, simple(tr, "B"))
		require.NotNil(t, late)
		late()

		assert.Equal(t, []string{"A"}, tr.list())
		assert.True(t, res.Closed())
	})

	t.Run("next returns after the downstream chain closed the response", func(t *testing.T) {
		t.Parallel()

		var closedDuring bool
		var res *response.Writer
		upstream := handler.Continuable(func(req *handler.Request, r handler.Response, next handler.Next) error {
			next()
			closedDuring = res.Closed()
			return nil
		})

		rec := httptest.NewRecorder()
		res = response.New(rec)
		req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		router.NewDispatcher().Dispatch(req, res, []handler.Handler{upstream})

		assert.True(t, closedDuring, "downstream exhaustion closes before next returns")
	})
}

func TestDispatchErrorPhase(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	t.Run("failure runs only error handlers in relative order", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		rec, res := dispatch(t, router.NewDispatcher(),
			recovering(tr, "E1", &seen),
			passing(tr, "A"),
			failing(tr, "B", errBoom),
			simple(tr, "C"),
			terminal(tr, "E2", &seen),
			terminal(tr, "E3", &seen),
		)

		assert.Equal(t, []string{"A", "B", "E1", "E2"}, tr.list())
		assert.Equal(t, []error{errBoom, errBoom}, seen)
		assert.Equal(t, "A;E2;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("error continuable without next closes", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var got error
		e := handler.ErrorContinuable(func(err error, req *handler.Request, res handler.Response, next handler.Next) error {
			tr.add("E")
			got = err
			return nil
		})

		_, res := dispatch(t, router.NewDispatcher(),
			e,
			failing(tr, "A", errBoom),
			terminal(tr, "never", new([]error)),
		)

		assert.Equal(t, []string{"A", "E"}, tr.list())
		assert.ErrorIs(t, got, errBoom)
		assert.True(t, res.Closed())
	})

	t.Run("no error handler closes with nothing written after failure", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		rec, res := dispatch(t, router.NewDispatcher(),
			passing(tr, "A"),
			failing(tr, "B", errBoom),
			simple(tr, "C"),
		)

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.Equal(t, "A;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("simple handler failure enters the error phase", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		bad := handler.Simple(func(req *handler.Request, res handler.Response) error {
			return errBoom
		})

		_, res := dispatch(t, router.NewDispatcher(), bad, terminal(tr, "E", &seen))

		assert.Equal(t, []string{"E"}, tr.list())
		assert.Equal(t, []error{errBoom}, seen)
		assert.True(t, res.Closed())
	})

	t.Run("panic is recovered as PanicError", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		panicking := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			panic(errBoom)
		})

		_, res := dispatch(t, router.NewDispatcher(), panicking, terminal(tr, "E", &seen))

		require.Len(t, seen, 1)
		var pe router.PanicError
		require.ErrorAs(t, seen[0], &pe)
		assert.Equal(t, errBoom, pe.Value())
		assert.NotEmpty(t, pe.Stack())
		assert.ErrorIs(t, seen[0], errBoom)
		assert.True(t, res.Closed())
	})

	t.Run("failure inside the error phase force closes", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		broken := handler.ErrorContinuable(func(err error, req *handler.Request, res handler.Response, next handler.Next) error {
			tr.add("E1")
			return errors.New("error handler failed")
		})

		_, res := dispatch(t, router.NewDispatcher(),
			failing(tr, "A", errBoom),
			broken,
			terminal(tr, "E2", &seen),
		)

		assert.Equal(t, []string{"A", "E1"}, tr.list())
		assert.Empty(t, seen)
		assert.True(t, res.Closed())
	})

	t.Run("panic inside the error phase force closes", func(t *testing.T) {
		t.Parallel()

		broken := handler.ErrorSimple(func(err error, req *handler.Request, res handler.Response) error {
			panic("again")
		})

		_, res := dispatch(t, router.NewDispatcher(), failing(&trace{}, "A", errBoom), broken)

		assert.True(t, res.Closed())
	})

	t.Run("downstream failure is handled downstream", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		var upstreamReturned bool
		up := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			next()
			upstreamReturned = true
			return nil
		})

		_, res := dispatch(t, router.NewDispatcher(),
			up,
			failing(tr, "B", errBoom),
			terminal(tr, "E", &seen),
		)

		assert.True(t, upstreamReturned)
		assert.Equal(t, []string{"B", "E"}, tr.list())
		assert.Len(t, seen, 1)
		assert.True(t, res.Closed())
	})

	t.Run("failure after the response closed skips the error phase", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		late := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			next()
			return errBoom
		})

		rec, res := dispatch(t, router.NewDispatcher(),
			late,
			simple(tr, "B"),
			terminal(tr, "E", &seen),
		)

		assert.Equal(t, []string{"B"}, tr.list())
		assert.Empty(t, seen)
		assert.Equal(t, "B;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("error handlers may write a status before the body", func(t *testing.T) {
		t.Parallel()

		status := handler.ErrorSimple(func(err error, req *handler.Request, res handler.Response) error {
			res.Status(http.StatusTeapot)
			return res.Send(err.Error())
		})

		rec, _ := dispatch(t, router.NewDispatcher(), failing(&trace{}, "A", errBoom), status)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "boom", rec.Body.String())
	})
}

func TestDispatchSuspending(t *testing.T) {
	t.Parallel()

	t.Run("suspending handler continues from its own goroutine", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		async := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			done := make(chan struct{})
			go func() {
				defer close(done)
				time.Sleep(10 * time.Millisecond)
				tr.add("A")
				next()
			}()
			<-done
			return nil
		}).Suspending()

		rec, res := dispatch(t, router.NewDispatcher(), async, simple(tr, "B"))

		assert.Equal(t, []string{"A", "B"}, tr.list())
		assert.Equal(t, "B;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("suspending failure enters the error phase", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		var seen []error
		errIO := errors.New("io failed")
		slow := handler.Simple(func(req *handler.Request, res handler.Response) error {
			time.Sleep(5 * time.Millisecond)
			return errIO
		}).Suspending()

		_, res := dispatch(t, router.NewDispatcher(), slow, terminal(tr, "E", &seen))

		assert.Equal(t, []error{errIO}, seen)
		assert.True(t, res.Closed())
	})

	t.Run("deadline abandons a stalled suspending handler", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		tr := &trace{}
		var seen []error
		stalled := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			<-release
			next()
			return nil
		}).Suspending().Named("stalled")

		d := router.NewDispatcher(router.WithDispatcherTimeout(20 * time.Millisecond))
		start := time.Now()
		rec, res := dispatch(t, d, stalled, simple(tr, "never"), terminal(tr, "E", &seen))

		assert.Less(t, time.Since(start), time.Second)
		require.Len(t, seen, 1)
		assert.ErrorIs(t, seen[0], router.ErrHandlerTimeout)
		assert.Equal(t, []string{"E"}, tr.list())
		assert.Equal(t, "E;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("deadline after next keeps the downstream outcome", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		tr := &trace{}
		var seen []error
		lingering := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
			next()
			<-release
			return nil
		}).Suspending()

		d := router.NewDispatcher(router.WithDispatcherTimeout(20 * time.Millisecond))
		start := time.Now()
		rec, res := dispatch(t, d, lingering, simple(tr, "B"), terminal(tr, "E", &seen))

		assert.Less(t, time.Since(start), time.Second)
		assert.Empty(t, seen)
		assert.Equal(t, []string{"B"}, tr.list())
		assert.Equal(t, "B;", rec.Body.String())
		assert.True(t, res.Closed())
	})

	t.Run("request context carries the deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool
		inspect := handler.Simple(func(req *handler.Request, res handler.Response) error {
			_, hasDeadline = req.Context().Deadline()
			return nil
		})

		dispatch(t, router.NewDispatcher(router.WithDispatcherTimeout(time.Second)), inspect)
		assert.True(t, hasDeadline)
	})
}

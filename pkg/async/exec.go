package async

import (
	"context"
	"sync"
)

// ExecFuture represents the result of an asynchronous computation that only returns an error.
type ExecFuture struct {
	err  error
	once sync.Once
	done chan struct{}
}

// Await waits for the asynchronous function to complete and returns its error.
func (f *ExecFuture) Await() error {
	<-f.done
	return f.err
}

// AwaitContext waits for completion or for ctx to be done, whichever comes first.
// The function keeps running in the background when ctx wins.
func (f *ExecFuture) AwaitContext(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the function has returned.
func (f *ExecFuture) Done() <-chan struct{} {
	return f.done
}

// Err returns the result without blocking; nil until the future is complete.
func (f *ExecFuture) Err() error {
	if !f.IsComplete() {
		return nil
	}
	return f.err
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *ExecFuture) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec executes fn on its own goroutine.
func Exec(ctx context.Context, fn func(context.Context) error) *ExecFuture {
	f := &ExecFuture{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		err := fn(ctx)

		f.once.Do(func() {
			f.err = err
		})
	}()

	return f
}

// Package async runs blocking work on its own goroutine and lets the caller
// await the outcome, optionally bounded by a context.
//
// The relay dispatcher uses it to run suspending handlers, so a request deadline
// can stop waiting for a handler that never returns.
//
//	future := async.Exec(ctx, func(ctx context.Context) error {
//		return fetch(ctx)
//	})
//
//	if err := future.AwaitContext(ctx); errors.Is(err, context.DeadlineExceeded) {
//		log.Println("gave up waiting")
//	}
//
// A pre-canceled context short-circuits Exec without calling the function.
package async

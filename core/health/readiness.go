package health

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/core/handler"
	"github.com/dmitrymomot/relay/core/logger"
)

// Readiness verifies all service dependencies are functioning.
// Checks run concurrently. Returns "READY" if all pass, 503 Service Unavailable
// with "NOT READY" if any fail. The handler is suspending, so a router dispatch
// timeout bounds slow checks.
//
// Example:
//
//	app.Register("/health/ready", health.Readiness(
//		logger,
//		db.PingContext,
//		cache.Ping,
//	))
func Readiness(log *slog.Logger, fn ...func(context.Context) error) handler.Handler {
	if log == nil {
		log = logger.Nop()
	}

	return handler.Simple(func(req *handler.Request, res handler.Response) error {
		g, ctx := errgroup.WithContext(req.Context())
		for _, f := range fn {
			g.Go(func() error {
				return f(ctx)
			})
		}

		if err := g.Wait(); err != nil {
			log.ErrorContext(req.Context(), "Readiness check failed",
				logger.Component("health"),
				logger.Error(err),
			)
			res.Status(http.StatusServiceUnavailable)
			return res.Send("NOT READY")
		}

		return res.Send("READY")
	}).Suspending().Named("health_readiness")
}

package health

import (
	"net/http"

	"github.com/dmitrymomot/relay/core/handler"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
//
// Example:
//
//	app.Register("/health/live", health.Liveness())
func Liveness() handler.Handler {
	return handler.Simple(func(req *handler.Request, res handler.Response) error {
		return res.Send("ALIVE")
	}).Named("health_liveness")
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
//
// Example:
//
//	app.Register("/ping", health.NoContent())
func NoContent() handler.Handler {
	return handler.Simple(func(req *handler.Request, res handler.Response) error {
		res.Status(http.StatusNoContent)
		return nil
	}).Named("health_no_content")
}

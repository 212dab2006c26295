// Package health provides relay handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	// Register before the catch-all handlers so the probes terminate the chain
//	app.Register("/health/live", health.Liveness())
//	app.Register("/health/ready", health.Readiness(
//		logger,
//		db.PingContext,
//		cache.Ping,
//	))
//	app.Register("/ping", health.NoContent())
//
// Dependency checks must follow func(context.Context) error signature:
//
//	func checkDB(ctx context.Context) error {
//		return db.PingContext(ctx)
//	}
package health

// Package middleware provides ready-made relay handlers for common cross-cutting
// concerns: request IDs, client IP extraction, access logging, CORS, security
// headers and error responses.
//
// Every constructor returns a handler.Handler that is registered like any other:
//
//	app.Use(middleware.RequestID())
//	app.Use(middleware.ClientIP())
//	app.Use(middleware.SecurityHeaders())
//	app.Use(middleware.CORS())
//	app.Use(middleware.Logging())
//	app.Register("/api", apiHandlers...)
//	app.Use(middleware.ErrorLogger())
//	app.Use(middleware.ErrorJSON())
//
// # Architecture
//
// All middleware follow a consistent pattern:
//   - Default constructors for common use cases
//   - WithConfig constructors for advanced configuration
//   - Getters for values stored in the request
//
// Request middleware are continuable handlers that call next. Values they
// extract are stored with Request.SetValue and read back with GetRequestID,
// GetClientIP and GetRequestBody.
//
// CORS answers a preflight request itself: it sets 204 (or 403 for a disallowed
// origin or method) and returns without calling next, which ends the chain.
//
// # Error Handling
//
// ErrorLogger is an error-continuable handler: it logs the failure and continues
// the error chain. ErrorJSON is a terminal error handler that writes an ErrorBody:
//
//	{"Status":500,"Error":"Internal Server Error","RequestID":"..."}
//
// Error handlers only run after a failure, so their position relative to request
// handlers does not matter; their order relative to each other does.
//
// # Access Logging
//
// Logging writes one entry when the request enters the chain and one after the
// rest of the chain has finished, including status, size and duration:
//
//	app.Use(middleware.LoggingWithConfig(middleware.LoggingConfig{
//		Logger:     log,
//		LogHeaders: true,
//		Skip: func(req *handler.Request) bool {
//			return req.Path == "/health"
//		},
//	}))
package middleware

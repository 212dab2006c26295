// Package handler defines the units of request-processing logic that make up
// a relay handler chain, together with the request snapshot and the response
// surface they operate on.
//
// # Handler Shapes
//
// A Handler is a tagged value with exactly one of four shapes:
//
//	handler.Simple(func(req *handler.Request, res handler.Response) error)
//	handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error)
//	handler.ErrorSimple(func(err error, req *handler.Request, res handler.Response) error)
//	handler.ErrorContinuable(func(err error, req *handler.Request, res handler.Response, next handler.Next) error)
//
// Simple shapes always terminate their chain. Continuable shapes continue it only
// by calling next; returning without calling next ends the chain. Error shapes are
// inert during normal dispatch and only run after an earlier handler failed.
//
// A handler fails by returning a non-nil error or by panicking.
//
// # Suspending Handlers
//
// Handlers that block on I/O should be marked with Suspending:
//
//	fetch := handler.Continuable(func(req *handler.Request, res handler.Response, next handler.Next) error {
//		user, err := loadUser(req.Context(), req.Query.Get("id"))
//		if err != nil {
//			return err
//		}
//		req.SetValue(userKey{}, user)
//		next()
//		return nil
//	}).Suspending()
//
// The dispatcher awaits suspending handlers against the request context, which
// lets a configured deadline abandon a stalled handler.
//
// # Responses
//
// Handlers write through Response and never close it:
//
//	hello := handler.Simple(func(req *handler.Request, res handler.Response) error {
//		res.Header().Set("Content-Type", "text/plain")
//		return res.SendLine("hello " + req.Query.Get("name"))
//	})
package handler

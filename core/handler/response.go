package handler

import "net/http"

// Response is the output side of a request as seen by handlers.
// It deliberately has no Close: the dispatcher closes every response exactly once.
type Response interface {
	// Header returns the header map sent with the first write.
	Header() http.Header
	// Status sets the status code. It has no effect after the first write.
	Status(code int)
	// Write writes raw bytes.
	Write(p []byte) (int, error)
	// Send writes s as UTF-8 text.
	Send(s string) error
	// SendLine writes s followed by a newline.
	SendLine(s string) error
	// JSON writes the record encoding of v.
	JSON(v any) error
	// Written reports whether anything has been sent.
	Written() bool
}

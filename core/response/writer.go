package response

import (
	"net/http"
	"sync"
)

// State is the lifecycle state of a Writer.
type State uint8

const (
	// StateOpen accepts writes.
	StateOpen State = iota
	// StateClosed is terminal; writes fail with ErrResponseClosed.
	StateClosed
)

// String returns the state name used in logs.
func (s State) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "open"
}

// Writer is a single-use output channel bound to one connection.
// It tracks whether headers were sent and refuses writes once closed.
// Safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	status  int
	written bool
	state   State
	bytes   int64
}

// New wraps an http.ResponseWriter.
func New(w http.ResponseWriter) *Writer {
	return &Writer{w: w}
}

// Header returns the header map of the underlying writer.
func (w *Writer) Header() http.Header {
	return w.w.Header()
}

// Status sets the status code sent with the first write or on Close.
func (w *Writer) Status(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written && w.state == StateOpen {
		w.status = code
	}
}

// Write writes raw bytes, sending headers first if needed.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.write(p)
}

// Send writes s as UTF-8 text.
func (w *Writer) Send(s string) error {
	_, err := w.Write([]byte(s))
	return err
}

// SendLine writes s followed by "\n".
func (w *Writer) SendLine(s string) error {
	_, err := w.Write([]byte(s + "\n"))
	return err
}

// JSON writes the record encoding of v produced by Encode.
// Content-Type is set to application/json unless headers were already sent
// or a content type was chosen by the caller.
func (w *Writer) JSON(v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateOpen && !w.written && w.w.Header().Get("Content-Type") == "" {
		w.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	_, err = w.write(data)
	return err
}

// Written reports whether headers have been sent.
func (w *Writer) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// StatusCode returns the status sent, or the pending one if nothing was sent yet.
func (w *Writer) StatusCode() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// BytesWritten returns the number of body bytes written.
func (w *Writer) BytesWritten() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// State returns the current lifecycle state.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Closed reports whether Close has been called.
func (w *Writer) Closed() bool {
	return w.State() == StateClosed
}

// Close sends pending headers, flushes and moves the writer to StateClosed.
// Calling Close again is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateClosed {
		return nil
	}
	w.state = StateClosed

	if !w.written {
		w.writeHeader()
	}
	if f, ok := w.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

func (w *Writer) write(p []byte) (int, error) {
	if w.state == StateClosed {
		return 0, ErrResponseClosed
	}
	if !w.written {
		w.writeHeader()
	}
	n, err := w.w.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *Writer) writeHeader() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.written = true
	w.w.WriteHeader(w.status)
}

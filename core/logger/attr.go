package logger

import (
	"log/slog"
	"runtime"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// ============================================================================
// Error Handling
// ============================================================================

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Dispatch
// ============================================================================

// Phase creates an attribute for the dispatch phase (dispatching/recovering).
func Phase(phase string) slog.Attr {
	return slog.String("phase", phase)
}

// Cursor creates an attribute for a position in a handler chain.
func Cursor(i int) slog.Attr {
	return slog.Int("cursor", i)
}

// Handler creates an attribute for a handler name.
func Handler(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("handler", name)
}

// Handlers creates an attribute for the size of a matched handler list.
func Handlers(n int) slog.Attr {
	return slog.Int("handlers", n)
}

// ============================================================================
// Performance and Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Timeout creates an attribute for a configured timeout.
func Timeout(d time.Duration) slog.Attr {
	return slog.Duration("timeout", d)
}

// ============================================================================
// Network and HTTP
// ============================================================================

// RequestID creates an attribute for HTTP request IDs.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Query creates an attribute for raw query strings.
func Query(q string) slog.Attr {
	if q == "" {
		return slog.Attr{}
	}
	return slog.String("query", q)
}

// RemoteAddr creates an attribute for the peer address.
func RemoteAddr(addr string) slog.Attr {
	return slog.String("remote_addr", addr)
}

// Addr creates an attribute for a listen address.
func Addr(addr string) slog.Attr {
	return slog.String("addr", addr)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// BytesOut creates an attribute for outgoing bytes.
func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Key creates a generic key-value attribute.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// ============================================================================
// Debugging
// ============================================================================

// Stack captures and returns the current stack trace.
func Stack() slog.Attr {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}

// StackTrace wraps an already captured stack trace.
func StackTrace(stack []byte) slog.Attr {
	if len(stack) == 0 {
		return slog.Attr{}
	}
	return slog.String("stack", string(stack))
}

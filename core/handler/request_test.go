package handler_test

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/handler"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	t.Run("snapshot fields", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPut, "http://api.example.com:9000/v1/items?tag=a&tag=b&q=", nil)
		r.Header.Set("Content-Type", "application/json")
		r.Header.Add("Accept", "text/html")
		r.Header.Add("accept", "application/json")
		r.AddCookie(&http.Cookie{Name: "a", Value: "1"})
		r.AddCookie(&http.Cookie{Name: "b", Value: "2"})

		req := handler.NewRequest(r)

		assert.Equal(t, "HTTP/1.1", req.Proto)
		assert.Equal(t, 1, req.ProtoMajor)
		assert.Equal(t, 1, req.ProtoMinor)
		assert.Equal(t, "PUT", req.Method())
		assert.Equal(t, "http", req.Scheme)
		assert.Equal(t, "api.example.com", req.Host)
		assert.Equal(t, 9000, req.Port)
		assert.Equal(t, "/v1/items", req.Path)
		assert.Equal(t, "/v1/items?tag=a&tag=b&q=", req.URL)
		assert.Equal(t, []string{"a", "b"}, req.Query["tag"])
		assert.True(t, req.Query.Has("q"))
		assert.Equal(t, "application/json", req.ContentType)
		assert.Equal(t, []string{"text/html", "application/json"}, req.Header.Values("ACCEPT"))
		require.Len(t, req.Cookies, 2)
		assert.Equal(t, "2", req.Cookie("b").Value)
		assert.Nil(t, req.Cookie("missing"))
		assert.Equal(t, r.RemoteAddr, req.RemoteAddr)
	})

	t.Run("header snapshot is detached", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Before", "1")
		req := handler.NewRequest(r)
		r.Header.Set("X-After", "1")

		assert.Equal(t, "1", req.Header.Get("X-Before"))
		assert.Empty(t, req.Header.Get("X-After"))
	})

	t.Run("default ports", func(t *testing.T) {
		t.Parallel()

		plain := handler.NewRequest(httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
		assert.Equal(t, 80, plain.Port)

		r := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
		r.TLS = &tls.ConnectionState{}
		secure := handler.NewRequest(r)
		assert.Equal(t, "https", secure.Scheme)
		assert.Equal(t, 443, secure.Port)
	})

	t.Run("path is decoded and url keeps the encoding", func(t *testing.T) {
		t.Parallel()

		req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/files/a%2Fb", nil))
		assert.Equal(t, "/files/a/b", req.Path)
		assert.Equal(t, "/files/a%2Fb", req.URL)
	})

	t.Run("local address from context", func(t *testing.T) {
		t.Parallel()

		addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(context.WithValue(r.Context(), http.LocalAddrContextKey, addr))

		assert.Equal(t, "127.0.0.1:8080", handler.NewRequest(r).LocalAddr)
	})
}

func TestRequestMethod(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]string{
		"get":    "GET",
		"Post":   "POST",
		"DELETE": "DELETE",
		"PURGE":  "PURGE",
		"purge":  "purge",
	} {
		req := &handler.Request{RawMethod: raw}
		assert.Equal(t, want, req.Method(), raw)
	}
}

func TestRequestValues(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	type bagKey struct{}

	t.Run("values are shared across context copies", func(t *testing.T) {
		t.Parallel()

		req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		scoped := req.WithContext(context.Background())

		scoped.SetValue(bagKey{}, "v")
		assert.Equal(t, "v", req.Value(bagKey{}))
	})

	t.Run("falls back to context", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, "from-ctx"))
		req := handler.NewRequest(r)

		assert.Equal(t, "from-ctx", req.Value(ctxKey{}))
		assert.Nil(t, req.Value(bagKey{}))
	})

	t.Run("zero request", func(t *testing.T) {
		t.Parallel()

		var req handler.Request
		assert.NotNil(t, req.Context())
		req.SetValue(bagKey{}, 1)
		assert.Equal(t, 1, req.Value(bagKey{}))
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req.SetValue(i, i)
				_ = req.Value(i)
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, req.Value(3))
	})

	t.Run("with context rejects nil", func(t *testing.T) {
		t.Parallel()

		req := handler.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Panics(t, func() {
			//nolint:staticcheck // nil context is the case under test
			req.WithContext(nil)
		})
	})
}

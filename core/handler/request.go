package handler

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Request is an immutable snapshot of one inbound HTTP request.
// Fields are set once by NewRequest and never changed by the dispatcher.
type Request struct {
	Proto      string
	ProtoMajor int
	ProtoMinor int

	Header http.Header
	Query  url.Values

	URL    string
	Scheme string
	Host   string
	Port   int
	Path   string

	RawMethod   string
	ContentType string
	Cookies     []*http.Cookie

	RemoteAddr string
	LocalAddr  string

	// Body is read by handlers; the engine never consumes it.
	Body io.ReadCloser

	ctx    context.Context
	values *valueBag
}

// NewRequest builds a Request snapshot from a net/http request.
func NewRequest(r *http.Request) *Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	host, port := splitHostPort(r.Host, scheme)

	// Prefixes match the decoded path; the encoded form stays in URL.
	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	var local string
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		local = addr.String()
	}

	return &Request{
		Proto:       r.Proto,
		ProtoMajor:  r.ProtoMajor,
		ProtoMinor:  r.ProtoMinor,
		Header:      r.Header.Clone(),
		Query:       r.URL.Query(),
		URL:         r.URL.RequestURI(),
		Scheme:      scheme,
		Host:        host,
		Port:        port,
		Path:        path,
		RawMethod:   r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Cookies:     r.Cookies(),
		RemoteAddr:  r.RemoteAddr,
		LocalAddr:   local,
		Body:        r.Body,
		ctx:         r.Context(),
		values:      &valueBag{},
	}
}

// Method returns the normalized method token. Well-known methods are matched
// case-insensitively; anything else is returned as received.
func (r *Request) Method() string {
	switch m := strings.ToUpper(r.RawMethod); m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodTrace, http.MethodConnect:
		return m
	default:
		return r.RawMethod
	}
}

// Cookie returns the named cookie, or nil.
func (r *Request) Cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Context returns the request context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r bound to ctx.
// The copy shares the value bag with r.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("handler: nil context")
	}
	r2 := *r
	r2.ctx = ctx
	if r2.values == nil {
		r2.values = &valueBag{}
	}
	return &r2
}

// SetValue stores a request-scoped value visible to later handlers in the chain.
func (r *Request) SetValue(key, val any) {
	if r.values == nil {
		r.values = &valueBag{}
	}
	r.values.set(key, val)
}

// Value returns a value stored with SetValue, falling back to the request context.
func (r *Request) Value(key any) any {
	if r.values != nil {
		if v, ok := r.values.get(key); ok {
			return v
		}
	}
	return r.Context().Value(key)
}

// valueBag is safe for concurrent use since suspending handlers run on their own goroutine.
type valueBag struct {
	mu sync.RWMutex
	m  map[any]any
}

func (b *valueBag) set(key, val any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.m == nil {
		b.m = make(map[any]any)
	}
	b.m[key] = val
}

func (b *valueBag) get(key any) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	return v, ok
}

func splitHostPort(hostport, scheme string) (string, int) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
		portStr = ""
	}
	if port, err := strconv.Atoi(portStr); err == nil {
		return host, port
	}
	if scheme == "https" {
		return host, 443
	}
	return host, 80
}

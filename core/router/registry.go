package router

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/relay/core/handler"
)

// Entry is a route prefix with the handlers registered under it, in registration order.
type Entry struct {
	Prefix   string
	Handlers []handler.Handler
}

// Registry is an ordered, append-only collection of route entries.
//
// Registration happens during startup. Freeze ends that phase; from then on the
// registry is read-only and Match takes no locks, which is what lets every
// connection read it concurrently.
type Registry struct {
	mu      sync.Mutex
	entries []*Entry
	index   map[string]int
	frozen  atomic.Bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends handlers to the entry for prefix, creating the entry on first use.
// Repeat registration grows the list; nothing is deduplicated.
// It panics on an invalid prefix, a zero handler, or a frozen registry.
func (r *Registry) Register(prefix string, handlers ...handler.Handler) {
	if len(prefix) == 0 || prefix[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPrefix, prefix))
	}
	for i, h := range handlers {
		if h.IsZero() {
			panic(fmt.Errorf("%w at position %d under '%s'", ErrZeroHandler, i, prefix))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		panic(fmt.Errorf("%w: '%s'", ErrRegistryFrozen, prefix))
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}

	i, ok := r.index[prefix]
	if !ok {
		i = len(r.entries)
		r.index[prefix] = i
		r.entries = append(r.entries, &Entry{Prefix: prefix})
	}
	r.entries[i].Handlers = append(r.entries[i].Handlers, handlers...)
}

// Freeze ends the registration phase. It is safe to call more than once.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Match returns the handlers of every entry whose prefix is a byte-wise prefix of path.
// Entries contribute in the order their prefixes were first registered; there is
// no most-specific-wins rule. The result is a fresh slice.
func (r *Registry) Match(path string) []handler.Handler {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	var matched []handler.Handler
	for _, e := range r.entries {
		if strings.HasPrefix(path, e.Prefix) {
			matched = append(matched, e.Handlers...)
		}
	}
	return matched
}

// Entries returns a copy of the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{
			Prefix:   e.Prefix,
			Handlers: append([]handler.Handler(nil), e.Handlers...),
		}
	}
	return out
}

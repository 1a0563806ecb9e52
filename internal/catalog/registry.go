package catalog

import "sync"

// Registry tracks every Cache instance wired into the server so the
// /debug/caches endpoint can report on all of them without each pipeline
// having to know the others exist (original_source src/cache.py
// CacheRegistry).
type Registry struct {
	mu     sync.Mutex
	caches map[string]*Cache
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[string]*Cache)}
}

// Register adds c under its Name. Registering two caches with the same
// name replaces the first — wiring order therefore matters, and
// cmd/atlasrouter registers each cache exactly once.
func (r *Registry) Register(c *Cache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches[c.Name] = c
}

// Get returns the named cache, or nil if it was never registered.
func (r *Registry) Get(name string) *Cache {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caches[name]
}

// All returns a stats snapshot for every registered cache, keyed by name.
// Backs the /debug/caches endpoint (SUPPLEMENTED FEATURES).
func (r *Registry) All() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Stats, len(r.caches))
	for name, c := range r.caches {
		out[name] = c.Stats()
	}
	return out
}

// ClearAll empties every registered cache. Used by tests and by an
// operator-triggered reset, never by request-handling code paths.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.caches {
		c.Clear()
	}
}

// Package catalog implements CatalogCache: a lazy-loaded, TTL-bounded,
// multi-index entity catalog (countries, products, services) with stampede
// prevention (spec.md §4.1). Grounded on original_source src/cache.py's
// CatalogCache and CacheRegistry, translated from asyncio.Lock
// double-checked locking to sync.Mutex.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNotPopulated is returned by LookupSync when the cache has never
// loaded. A programming error, not a user error (spec.md §4.1).
var ErrNotPopulated = errors.New("catalog: not populated")

// ErrUnknownIndex is returned when a lookup names an index that was never
// registered via AddIndex. A programming error.
var ErrUnknownIndex = errors.New("catalog: unknown index")

// exclude is the sentinel a KeyFunc may return to omit an entry from an
// index (e.g. a country with no ISO alpha-3 code).
const exclude = ""

// KeyFunc extracts an index key from an entry. Return "" (exclude) to omit
// the entry from this index.
type KeyFunc func(entry any) string

// NormalizeFunc canonicalizes a lookup key so that
// Lookup(idx, k1) == Lookup(idx, k2) whenever Normalize(k1) == Normalize(k2).
type NormalizeFunc func(key string) string

// FetchFunc loads the full dataset from its source of truth.
type FetchFunc func(ctx context.Context) ([]any, error)

type index struct {
	keyFn       KeyFunc
	normalizeFn NormalizeFunc
	byKey       map[string]any
}

// Cache is a single named, lazily-populated, TTL-bounded catalog.
type Cache struct {
	Name string

	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	fetcher FetchFunc

	entries     []any
	indexes     map[string]*index
	populatedAt *time.Time
}

// New builds a Cache with the given TTL. Use AddIndex to register indexes
// and SetFetcher to register the loader before first use.
func New(name string, ttl time.Duration) *Cache {
	return &Cache{
		Name:    name,
		ttl:     ttl,
		now:     time.Now,
		indexes: make(map[string]*index),
	}
}

// WithClock overrides the time source (for deterministic TTL tests).
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// AddIndex registers an exact-match index. keyFn may return "" to exclude an
// entry from this index.
func (c *Cache) AddIndex(name string, keyFn KeyFunc, normalizeFn NormalizeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[name] = &index{keyFn: keyFn, normalizeFn: normalizeFn, byKey: make(map[string]any)}
}

// SetFetcher registers the async loader producing the full dataset.
func (c *Cache) SetFetcher(fn FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetcher = fn
}

// valid reports whether the cache is populated and not expired. Caller
// holds c.mu.
func (c *Cache) valid() bool {
	if c.populatedAt == nil {
		return false
	}
	return c.now().Sub(*c.populatedAt) < c.ttl
}

// Populate bypasses the fetcher, rebuilding every index atomically from
// entries and resetting the TTL timer. Used for tests and pre-warming.
func (c *Cache) Populate(entries []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuild(entries)
}

// rebuild replaces c.entries and every index's byKey map from entries in one
// pass, so there is never a window where indexes disagree. Caller holds c.mu.
func (c *Cache) rebuild(entries []any) {
	c.entries = entries
	for _, idx := range c.indexes {
		idx.byKey = make(map[string]any, len(entries))
		for _, e := range entries {
			k := idx.keyFn(e)
			if k == exclude {
				continue
			}
			idx.byKey[idx.normalizeFn(k)] = e
		}
	}
	now := c.now()
	c.populatedAt = &now
}

// ensureFresh fetches and repopulates if the cache is empty or expired.
// Stampede prevention: callers block on c.mu (held across the fetch), so
// concurrent cold-cache callers serialize and only one fetch occurs; the
// others observe the freshly populated state once they acquire the lock.
func (c *Cache) ensureFresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return nil
	}
	if c.fetcher == nil {
		return fmt.Errorf("catalog %s: no fetcher registered and cache is empty", c.Name)
	}
	entries, err := c.fetcher(ctx)
	if err != nil {
		// Fetch failures propagate; the cache remains empty (spec.md §4.1
		// Stampede prevention).
		return fmt.Errorf("catalog %s: fetch failed: %w", c.Name, err)
	}
	c.rebuild(entries)
	return nil
}

// Lookup normalizes key and returns the matching entry, triggering a fetch
// iff the cache is empty or expired.
func (c *Cache) Lookup(ctx context.Context, indexName, key string) (any, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	return c.lookupLocked(indexName, key)
}

// LookupSync behaves like Lookup but never fetches: it fails with
// ErrNotPopulated if the cache has never loaded. Used in post-processing
// where an earlier async step guarantees population.
func (c *Cache) LookupSync(indexName, key string) (any, error) {
	c.mu.Lock()
	populated := c.populatedAt != nil
	c.mu.Unlock()
	if !populated {
		return nil, fmt.Errorf("catalog %s: %w", c.Name, ErrNotPopulated)
	}
	return c.lookupLocked(indexName, key)
}

func (c *Cache) lookupLocked(indexName, key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.indexes[indexName]
	if !ok {
		return nil, fmt.Errorf("catalog %s: %w: %q", c.Name, ErrUnknownIndex, indexName)
	}
	e, ok := idx.byKey[idx.normalizeFn(key)]
	if !ok {
		return nil, nil
	}
	return e, nil
}

// FieldFunc extracts the searchable text for an entry.
type FieldFunc func(entry any) string

// Search performs a case-insensitive substring match over all entries using
// fieldFn, returning at most limit matches in encounter order. Triggers a
// fetch iff the cache is empty or expired.
func (c *Cache) Search(ctx context.Context, fieldFn FieldFunc, query string, limit int) ([]any, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []any
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(fieldFn(e)), q) {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// GetAll returns a full snapshot, triggering a fetch if needed.
func (c *Cache) GetAll(ctx context.Context) ([]any, error) {
	if err := c.ensureFresh(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.entries...), nil
}

// Clear empties storage and resets the TTL timer.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	for _, idx := range c.indexes {
		idx.byKey = make(map[string]any)
	}
	c.populatedAt = nil
}

// Stats reports observability counters for /debug/caches.
type Stats struct {
	Populated bool
	Size      int
	TTL       time.Duration
	AgeSec    float64
	Indexes   []string
}

// Stats returns current cache statistics without triggering a fetch.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{TTL: c.ttl, Size: len(c.entries)}
	for name := range c.indexes {
		s.Indexes = append(s.Indexes, name)
	}
	if c.populatedAt != nil {
		s.Populated = true
		s.AgeSec = c.now().Sub(*c.populatedAt).Seconds()
	}
	return s
}

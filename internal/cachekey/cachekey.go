// Package cachekey provides canonical key helpers for caches whose keys have
// set (order-insensitive) or text (case/whitespace-insensitive) semantics.
// Grounded on original_source src/cache.py (product_details_key,
// text_search_key, table_info_key): sort before hashing for set-keyed
// caches, normalize before hashing for text-keyed caches.
package cachekey

import (
	"sort"
	"strings"
)

// SortedSet returns a canonical, order-insensitive key for a set of strings:
// SortedSet([a, b]) == SortedSet([b, a]). Used for product-code sets and
// schema sets (spec.md §8 "Order-invariance").
func SortedSet(items []string) string {
	cp := append([]string(nil), items...)
	sort.Strings(cp)
	return strings.Join(cp, "\x1f")
}

// Normalize returns a case- and whitespace-insensitive canonical form of s.
// Normalize(k1) == Normalize(k2) whenever k1 and k2 should be treated as the
// same lookup key (spec.md §8 "Key normalization").
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Pair builds a composite key from a normalized text key and a schema tag,
// e.g. for text-search caches keyed by (query, schema).
func Pair(text, schema string) string {
	return Normalize(text) + "\x1f" + Normalize(schema)
}

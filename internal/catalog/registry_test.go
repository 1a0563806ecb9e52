package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_AllReportsEveryCache(t *testing.T) {
	r := NewRegistry()
	countries := New("countries", time.Minute)
	products := New("products", time.Minute)
	r.Register(countries)
	r.Register(products)

	stats := r.All()
	require.Contains(t, stats, "countries")
	require.Contains(t, stats, "products")
	require.False(t, stats["countries"].Populated)
}

func TestRegistry_GetUnknownReturnsNil(t *testing.T) {
	r := NewRegistry()
	require.Nil(t, r.Get("missing"))
}

func TestRegistry_ClearAllResetsEveryCache(t *testing.T) {
	r := NewRegistry()
	c := New("countries", time.Minute)
	c.AddIndex("iso3", func(e any) string { return e.(country).ISO3 }, Normalize)
	c.Populate([]any{country{1, "USA", "United States"}})
	r.Register(c)

	require.True(t, r.Get("countries").Stats().Populated)
	r.ClearAll()
	require.False(t, r.Get("countries").Stats().Populated)
}

package graphqlpipeline

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/cachekey"
	"github.com/shreyasgm/atlas-router/internal/catalog"
)

func newProductCacheForTest(entries ...ProductEntity) *catalog.Cache {
	c := catalog.New("products", time.Minute)
	c.AddIndex("code", func(e any) string { return e.(ProductEntity).Code }, cachekey.Normalize)
	c.AddIndex("name", func(e any) string { return e.(ProductEntity).Name }, cachekey.Normalize)
	c.AddIndex("id", func(e any) string { return strconv.Itoa(e.(ProductEntity).ID) }, cachekey.Normalize)
	data := make([]any, len(entries))
	for i, e := range entries {
		data[i] = e
	}
	c.Populate(data)
	return c
}

func TestPostProcessResponse_NoRuleReturnsRawUnchanged(t *testing.T) {
	raw := map[string]any{"countryYear": []any{map[string]any{"year": float64(2020)}}}
	out, err := postProcessResponse(QueryCountryProfile, raw, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestPostProcessResponse_SortTruncateEnrich(t *testing.T) {
	products := newProductCacheForTest(ProductEntity{ID: 1, Name: "Coffee", Code: "0901"})
	raw := map[string]any{
		"countryProductYear": []any{
			map[string]any{"productId": float64(1), "exportValue": float64(100)},
			map[string]any{"productId": float64(2), "exportValue": float64(500)},
			map[string]any{"productId": float64(3), "exportValue": nil},
		},
	}
	out, err := postProcessResponse(QueryTreemapProducts, raw, products, nil)
	require.NoError(t, err)

	items := out["countryProductYear"].([]any)
	require.Len(t, items, 3)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(500), first["exportValue"], "descending sort puts the highest export value first")
	assert.Equal(t, "Coffee", items[1].(map[string]any)["productName"], "productId 1 is enriched by catalog lookup")

	meta := out["_postProcessed"].(map[string]any)
	assert.Equal(t, 3, meta["totalItems"])
	assert.Equal(t, 3, meta["shownItems"])
	assert.Equal(t, "exportValue", meta["sortField"])
}

func TestPostProcessResponse_TopNTruncates(t *testing.T) {
	items := make([]any, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, map[string]any{"productId": float64(i), "exportValue": float64(i)})
	}
	raw := map[string]any{"countryProductYear": items}
	out, err := postProcessResponse(QueryTreemapProducts, raw, nil, nil)
	require.NoError(t, err)
	assert.Len(t, out["countryProductYear"].([]any), 20)
	meta := out["_postProcessed"].(map[string]any)
	assert.Equal(t, 25, meta["totalItems"])
	assert.Equal(t, 20, meta["shownItems"])
}

func TestPostProcessResponse_RCAFilterDropsAtOrAboveOne(t *testing.T) {
	raw := map[string]any{
		"countryProductYear": []any{
			map[string]any{"productId": float64(1), "normalizedCog": float64(1), "rca": float64(0.5)},
			map[string]any{"productId": float64(2), "normalizedCog": float64(2), "rca": float64(1.5)},
		},
	}
	out, err := postProcessResponse(QueryGrowthOpportunities, raw, nil, nil)
	require.NoError(t, err)
	items := out["countryProductYear"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), items[0].(map[string]any)["productId"])
}

func TestPostProcessResponse_EnrichSkippedWhenCatalogUnpopulated(t *testing.T) {
	products := catalog.New("products", time.Minute)
	products.AddIndex("id", func(e any) string { return strconv.Itoa(e.(ProductEntity).ID) }, cachekey.Normalize)

	raw := map[string]any{"countryProductYear": []any{map[string]any{"productId": float64(1), "exportValue": float64(10)}}}
	out, err := postProcessResponse(QueryTreemapProducts, raw, products, nil)
	require.NoError(t, err)
	item := out["countryProductYear"].([]any)[0].(map[string]any)
	assert.NotContains(t, item, "productName")
}

package graphqlpipeline

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shreyasgm/atlas-router/internal/catalog"
)

// enrichKind names which catalog a post-process rule's enrich step
// consults, mirroring original_source src/post_processing.py's ENRICH_MAP.
type enrichKind string

const (
	enrichNone    enrichKind = ""
	enrichProduct enrichKind = "product"
	enrichCountry enrichKind = "country"
)

// filterKind names an optional pre-sort filter a rule applies.
type filterKind string

const (
	filterNone    filterKind = ""
	filterRCALt1  filterKind = "rca_lt_1"
)

// postProcessRule describes how build_and_execute_graphql's raw response is
// shaped into the tool-facing result (spec.md §4.6 node 6 "post-processed
// with sort + top_n + enrich"). Grounded on original_source
// src/post_processing.py's _POST_PROCESS_RULES table.
type postProcessRule struct {
	root   string
	sort   string
	topN   int
	enrich enrichKind
	filter filterKind
}

var postProcessRules = map[QueryType]postProcessRule{
	QueryTreemapProducts:     {root: "countryProductYear", sort: "exportValue", topN: 20, enrich: enrichProduct},
	QueryTreemapPartners:     {root: "countryCountryYear", sort: "exportValue", topN: 20, enrich: enrichCountry},
	QueryTreemapBilateral:    {root: "countryCountryProductYear", sort: "exportValue", topN: 20, enrich: enrichProduct},
	QueryNewProducts:         {root: "countryProductYear", sort: "normalizedCog", topN: 10, enrich: enrichProduct},
	QueryGrowthOpportunities: {root: "countryProductYear", sort: "normalizedCog", topN: 10, enrich: enrichProduct, filter: filterRCALt1},
	QueryProductTable:        {root: "countryProductYear", sort: "exportValue", topN: 50, enrich: enrichProduct},
	QueryFeasibilityTable:    {root: "countryProductYear", sort: "distance", topN: 50, enrich: enrichProduct, filter: filterRCALt1},
	QueryOvertimeProducts:    {root: "productYear", sort: "year", topN: 30, enrich: enrichProduct},
	QueryOvertimePartners:    {root: "countryCountryYear", sort: "year", topN: 30, enrich: enrichCountry},
	QueryMarketshare:         {root: "countryProductYear", sort: "exportValue", topN: 20, enrich: enrichProduct},
	QueryProductSpace:        {root: "countryProductYear", sort: "exportValue", topN: 0, enrich: enrichProduct},
	QueryBilateralAggregate:  {root: "countryCountryYear", sort: "exportValue", topN: 20, enrich: enrichCountry},
	QueryExploreBilateral:    {root: "countryCountryYear", sort: "exportValue", topN: 20, enrich: enrichCountry},
}

// postProcessResponse applies the rule for queryType to raw, the decoded
// GraphQL "data" payload. Query types with no rule (country_profile,
// country_year, product_info, global_datum, explore_data_availability,
// explore_group, feasibility, country_lookback — root-scalar or
// already-shaped responses) pass raw through unchanged.
func postProcessResponse(queryType QueryType, raw map[string]any, products, countries *catalog.Cache) (map[string]any, error) {
	rule, ok := postProcessRules[queryType]
	if !ok {
		return raw, nil
	}

	rootVal, ok := raw[rule.root]
	if !ok {
		return raw, nil
	}
	items, ok := rootVal.([]any)
	if !ok {
		return raw, nil
	}

	if rule.filter == filterRCALt1 {
		items = filterItems(items, func(m map[string]any) bool {
			rca, ok := m["rca"].(float64)
			return !ok || rca < 1
		})
	}

	total := len(items)
	sortItemsDescending(items, rule.sort)
	if rule.topN > 0 && len(items) > rule.topN {
		items = items[:rule.topN]
	}

	if rule.enrich != enrichNone {
		var err error
		items, err = enrichItems(items, rule.enrich, products, countries)
		if err != nil {
			return nil, err
		}
	}

	out := map[string]any{
		rule.root: items,
		"_postProcessed": map[string]any{
			"totalItems": total,
			"shownItems": len(items),
			"sortField":  rule.sort,
		},
	}
	return out, nil
}

func filterItems(items []any, keep func(map[string]any) bool) []any {
	var out []any
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok || keep(m) {
			out = append(out, it)
		}
	}
	return out
}

// sortItemsDescending sorts items by field descending, nulls (missing or
// non-numeric) last — mirroring post_processing.py's sort_with_nulls_last.
func sortItemsDescending(items []any, field string) {
	value := func(it any) (float64, bool) {
		m, ok := it.(map[string]any)
		if !ok {
			return 0, false
		}
		v, ok := m[field].(float64)
		return v, ok
	}
	sort.SliceStable(items, func(i, j int) bool {
		vi, oki := value(items[i])
		vj, okj := value(items[j])
		switch {
		case oki && okj:
			return vi > vj
		case oki && !okj:
			return true
		default:
			return false
		}
	})
}

// enrichItems attaches a human-readable name to each item's product or
// country id field via a synchronous (already-populated) catalog lookup,
// skipping enrichment with a warning if the catalog was never populated
// (spec.md §4.6 node 6 "enrich via synchronous catalog lookup").
func enrichItems(items []any, kind enrichKind, products, countries *catalog.Cache) ([]any, error) {
	var cache *catalog.Cache
	var idField, nameField string
	switch kind {
	case enrichProduct:
		cache, idField, nameField = products, "productId", "productName"
	case enrichCountry:
		cache, idField, nameField = countries, "countryId", "countryName"
	default:
		return items, nil
	}
	if cache == nil {
		return items, nil
	}

	out := make([]any, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			out[i] = it
			continue
		}
		enriched := make(map[string]any, len(m)+1)
		for k, v := range m {
			enriched[k] = v
		}
		if idVal, ok := m[idField]; ok {
			key := fmt.Sprintf("%v", idVal)
			entry, err := cache.LookupSync("id", key)
			if err != nil {
				slog.Warn("graphqlpipeline: enrichment skipped", "catalog", cache.Name, "err", err)
				return items, nil
			}
			if entry != nil {
				enriched[nameField] = entry.(resolvable).EntityName()
			}
		}
		out[i] = enriched
	}
	return out, nil
}

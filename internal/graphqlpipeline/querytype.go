// Package graphqlpipeline implements the six GraphQL pipeline nodes
// (spec.md §4.6): extract_graphql_question, classify_query, extract_entities,
// resolve_ids, build_and_execute_graphql, format_graphql_results. Grounded
// on original_source/src/graphql_pipeline.py, src/graphql_queries.py, and
// src/post_processing.py.
package graphqlpipeline

// QueryType is the closed vocabulary classify_query assigns a question to
// (spec.md §4.6 node 2; SUPPLEMENTED FEATURES #1 — the 23-real-plus-reject
// enumeration original_source/src/graphql_pipeline.py carries that the
// distilled spec only gestures at).
type QueryType string

const (
	QueryCountryProfile           QueryType = "country_profile"
	QueryCountryProfileExports    QueryType = "country_profile_exports"
	QueryCountryProfileComplexity QueryType = "country_profile_complexity"
	QueryCountryLookback          QueryType = "country_lookback"
	QueryNewProducts              QueryType = "new_products"
	QueryTreemapProducts          QueryType = "treemap_products"
	QueryTreemapPartners          QueryType = "treemap_partners"
	QueryTreemapBilateral         QueryType = "treemap_bilateral"
	QueryOvertimeProducts         QueryType = "overtime_products"
	QueryOvertimePartners         QueryType = "overtime_partners"
	QueryMarketshare              QueryType = "marketshare"
	QueryProductSpace             QueryType = "product_space"
	QueryFeasibility              QueryType = "feasibility"
	QueryFeasibilityTable         QueryType = "feasibility_table"
	QueryGrowthOpportunities      QueryType = "growth_opportunities"
	QueryProductTable             QueryType = "product_table"
	QueryCountryYear              QueryType = "country_year"
	QueryProductInfo              QueryType = "product_info"
	QueryBilateralAggregate       QueryType = "bilateral_aggregate"
	QueryExploreBilateral         QueryType = "explore_bilateral"
	QueryExploreGroup             QueryType = "explore_group"
	QueryGlobalDatum              QueryType = "global_datum"
	QueryExploreDataAvailability  QueryType = "explore_data_availability"
	QueryReject                   QueryType = "reject"
)

// APITarget selects which remote GraphQL backend a query is routed to
// (spec.md §4.6 node 2).
type APITarget string

const (
	APITargetExplore      APITarget = "explore"
	APITargetCountryPages APITarget = "country_pages"
)

// allQueryTypes is the exhaustiveness source of truth: every real query
// type (QueryReject excluded — it short-circuits before dispatch) must
// appear as a key in builderDispatch, which TestBuilderDispatch_Exhaustive
// checks. internal/links' queryTypeHandlers and postProcessRules cover only
// a subset: a type absent there gets no links or an unprocessed response.
var allQueryTypes = []QueryType{
	QueryCountryProfile, QueryCountryProfileExports, QueryCountryProfileComplexity,
	QueryCountryLookback, QueryNewProducts, QueryTreemapProducts, QueryTreemapPartners,
	QueryTreemapBilateral, QueryOvertimeProducts, QueryOvertimePartners, QueryMarketshare,
	QueryProductSpace, QueryFeasibility, QueryFeasibilityTable, QueryGrowthOpportunities,
	QueryProductTable, QueryCountryYear, QueryProductInfo, QueryBilateralAggregate,
	QueryExploreBilateral, QueryExploreGroup, QueryGlobalDatum, QueryExploreDataAvailability,
}

// IsValid reports whether q is a member of the closed query-type enum
// (including "reject").
func IsValid(q QueryType) bool {
	if q == QueryReject {
		return true
	}
	for _, v := range allQueryTypes {
		if v == q {
			return true
		}
	}
	return false
}

// countryPagesQueryTypes are routed to the Country-Pages API rather than
// Explore by default; classify_query's model output may still override
// this per question, but these are the types original_source's link
// generator treats as Country-Pages-native.
var countryPagesQueryTypes = map[QueryType]bool{
	QueryCountryProfile:      true,
	QueryCountryLookback:     true,
	QueryNewProducts:         true,
	QueryGrowthOpportunities: true,
	QueryProductTable:        true,
}

// DefaultAPITarget returns the Country-Pages-native default for q, or
// Explore otherwise. classify_query's structured Model output is
// authoritative; this is only a fallback for tests and documentation.
func DefaultAPITarget(q QueryType) APITarget {
	if countryPagesQueryTypes[q] {
		return APITargetCountryPages
	}
	return APITargetExplore
}

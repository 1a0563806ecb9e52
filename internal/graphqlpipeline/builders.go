package graphqlpipeline

import "fmt"

// builderFunc returns the (query, variables) pair build_and_execute_graphql
// sends upstream (spec.md §4.6 node 5). Distinct query types frequently
// share an underlying GraphQL root type; original_source src/graphql_queries.py
// groups them the same way ("productSpace/marketshare delegate to the
// country-product-year builder").
type builderFunc func(vars map[string]any, slim bool) (string, map[string]any)

// builderDispatch is the closed dispatch table keyed by QueryType. Every
// member of allQueryTypes (querytype.go) must appear here; a missing entry
// is a gap surfaced at test time by TestBuilderDispatch_Exhaustive.
var builderDispatch = map[QueryType]builderFunc{
	QueryCountryProfile:           buildCountryYear,
	QueryCountryProfileExports:    buildCountryYear,
	QueryCountryProfileComplexity: buildCountryYear,
	QueryCountryLookback:          buildCountryYear,
	QueryCountryYear:              buildCountryYear,

	QueryNewProducts:         slim(buildCountryProductYear),
	QueryTreemapProducts:     slim(buildCountryProductYear),
	QueryGrowthOpportunities: slim(buildCountryProductYear),
	QueryProductTable:        slim(buildCountryProductYear),
	QueryFeasibility:         buildCountryProductYear,
	QueryFeasibilityTable:    slim(buildCountryProductYear),
	QueryMarketshare:         slim(buildCountryProductYear),
	QueryProductSpace:        buildCountryProductYear,

	QueryTreemapPartners:    slim(buildCountryCountryYear),
	QueryOvertimePartners:   buildCountryCountryYear,
	QueryBilateralAggregate: buildCountryCountryYear,
	QueryExploreBilateral:   buildCountryCountryYear,

	QueryTreemapBilateral: slim(buildCountryCountryProductYear),

	QueryOvertimeProducts: buildProductYear,
	QueryProductInfo:      buildProductYear,
	QueryGlobalDatum:      buildProductYear,

	QueryExploreGroup: buildGroupYear,

	QueryExploreDataAvailability: buildDataAvailability,
}

// slim wraps a builder to force its slim (sort+display fields only)
// variant, used by query types whose downstream post-processing rule
// truncates to a top_n and doesn't need the full field set (spec.md §4.6
// node 5 "slim builders... to avoid oversized responses").
func slim(b builderFunc) builderFunc {
	return func(vars map[string]any, _ bool) (string, map[string]any) {
		return b(vars, true)
	}
}

func fieldSet(slimMode bool, full, slimFields string) string {
	if slimMode {
		return slimFields
	}
	return full
}

func buildCountryYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"year exportValue importValue eci coi rank",
		"year exportValue eci")
	q := fmt.Sprintf(`query CountryYear($countryId: Int, $location: String, $year: Int, $lookbackYears: Int) {
  countryYear(countryId: $countryId, location: $location, year: $year, lookbackYears: $lookbackYears) {
    %s
  }
}`, fields)
	return q, vars
}

func buildCountryProductYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"productId productName year exportValue rca distance normalizedCog pci",
		"productId exportValue normalizedCog rca distance")
	q := fmt.Sprintf(`query CountryProductYear($countryId: Int, $location: String, $product: String, $productLevel: Int, $year: Int, $yearMin: Int, $yearMax: Int) {
  countryProductYear(countryId: $countryId, location: $location, product: $product, productLevel: $productLevel, year: $year, yearMin: $yearMin, yearMax: $yearMax) {
    %s
  }
}`, fields)
	return q, vars
}

func buildCountryCountryYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"partnerCountryId partnerCountryName year exportValue importValue",
		"partnerCountryId exportValue year")
	q := fmt.Sprintf(`query CountryCountryYear($countryId: Int, $location: String, $partnerId: Int, $partnerLocation: String, $year: Int, $yearMin: Int, $yearMax: Int) {
  countryCountryYear(countryId: $countryId, location: $location, partnerId: $partnerId, partnerLocation: $partnerLocation, year: $year, yearMin: $yearMin, yearMax: $yearMax) {
    %s
  }
}`, fields)
	return q, vars
}

func buildCountryCountryProductYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"partnerCountryId partnerCountryName productId productName year exportValue",
		"partnerCountryId productId exportValue")
	q := fmt.Sprintf(`query CountryCountryProductYear($countryId: Int, $location: String, $partnerId: Int, $partnerLocation: String, $product: String, $year: Int) {
  countryCountryProductYear(countryId: $countryId, location: $location, partnerId: $partnerId, partnerLocation: $partnerLocation, product: $product, year: $year) {
    %s
  }
}`, fields)
	return q, vars
}

func buildProductYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"productId productName year exportValue pci",
		"year exportValue pci")
	q := fmt.Sprintf(`query ProductYear($product: String, $productLevel: Int, $year: Int, $yearMin: Int, $yearMax: Int) {
  productYear(product: $product, productLevel: $productLevel, year: $year, yearMin: $yearMin, yearMax: $yearMax) {
    %s
  }
}`, fields)
	return q, vars
}

func buildGroupYear(vars map[string]any, slimMode bool) (string, map[string]any) {
	fields := fieldSet(slimMode,
		"year exportValue importValue",
		"year exportValue")
	q := fmt.Sprintf(`query GroupYear($group: String, $year: Int) {
  groupYear(group: $group, year: $year) {
    %s
  }
}`, fields)
	return q, vars
}

func buildDataAvailability(vars map[string]any, _ bool) (string, map[string]any) {
	q := `query DataAvailability($countryId: Int, $location: String) {
  dataAvailability(countryId: $countryId, location: $location) {
    schema
    yearMin
    yearMax
  }
}`
	return q, vars
}

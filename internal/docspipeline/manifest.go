// Package docspipeline implements the three docs pipeline nodes (spec.md
// §4.7): extract_docs_question, select_and_synthesize, format_docs_result.
// Unlike sqlpipeline and graphqlpipeline, there is no original_source
// counterpart — this is a spec-only addition built in the sibling
// pipelines' node idiom. The manifest is a static, in-process set of
// help documents about the router itself (schemas, overrides, coverage),
// not a connection to an external docs store.
package docspipeline

// DocEntry is one static document the select_and_synthesize node can
// choose and ground an answer in.
type DocEntry struct {
	ID      string
	Title   string
	Content string
}

var manifest = []DocEntry{
	{
		ID:    "schemas",
		Title: "Product classification schemas",
		Content: `Atlas Router resolves products against four classification schemas: ` +
			`hs92 and hs12 (Harmonized System revisions, for goods), sitc (Standard ` +
			`International Trade Classification, for goods), and services_unilateral / ` +
			`services_bilateral (for services trade, which has no HS analogue). A ` +
			`question about goods trade defaults to hs92 unless the question or an ` +
			`override names a different goods schema. Services questions always use ` +
			`one of the two services schemas, chosen by whether the question asks ` +
			`about one country's services exports/imports (unilateral) or trade ` +
			`between a specific pair of countries (bilateral).`,
	},
	{
		ID:    "overrides",
		Title: "Conversation overrides",
		Content: `A conversation may carry three standing overrides that persist until ` +
			`changed: schema (pins every subsequent query to one classification ` +
			`schema, overriding any goods/services inference), mode (restricts product ` +
			`resolution to goods-only or services-only schemas without pinning to a ` +
			`single one), and direction (exports vs. imports, where applicable). An ` +
			`explicit schema override always wins over a mode override for the same ` +
			`turn.`,
	},
	{
		ID:    "rca",
		Title: "Revealed Comparative Advantage (RCA)",
		Content: `RCA measures whether a country exports a product at a higher share of ` +
			`its total exports than the world average share of that product in world ` +
			`trade. An RCA below 1 means the country is not yet a revealed exporter of ` +
			`that product — this is the standard filter used when asked for "growth ` +
			`opportunities" or a feasibility-style question: products with RCA at or ` +
			`above 1 are excluded because the country already reveals comparative ` +
			`advantage in them.`,
	},
	{
		ID:    "coverage",
		Title: "Data coverage and years",
		Content: `Goods trade data (hs92/hs12/sitc) is available from 1962 onward for ` +
			`SITC and from 1995 onward for HS revisions, subject to each country's ` +
			`own reporting history. Services trade data begins in 2000 for bilateral ` +
			`and unilateral schemas. A question about a year before a schema's earliest ` +
			`coverage should be answered by naming the coverage gap rather than ` +
			`guessing at a query.`,
	},
	{
		ID:    "complexity",
		Title: "Economic Complexity Index (ECI) and Product Complexity Index (PCI)",
		Content: `ECI ranks countries by the diversity and ubiquity of the products they ` +
			`export competitively: high ECI means a country exports many products that ` +
			`few other countries export competitively. PCI is the product-level ` +
			`analogue: high-PCI products are exported competitively by a small, ` +
			`diversified set of countries, and are associated with know-how that is ` +
			`hard to replicate. Both are unitless indices, not available before a ` +
			`country/product pair has at least one year of trade data.`,
	},
}

var docByID = func() map[string]DocEntry {
	m := make(map[string]DocEntry, len(manifest))
	for _, d := range manifest {
		m[d.ID] = d
	}
	return m
}()

func docIDs() []string {
	ids := make([]string, len(manifest))
	for i, d := range manifest {
		ids[i] = d.ID
	}
	return ids
}

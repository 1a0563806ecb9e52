package sqlpipeline

import "strings"

// SchemaToProductsTable maps a classification schema to its
// schema-qualified product lookup table, mirroring original_source
// product_and_schema_lookup.py SCHEMA_TO_PRODUCTS_TABLE_MAP.
var SchemaToProductsTable = map[string]string{
	"hs92":                "classification.product_hs92",
	"hs12":                "classification.product_hs12",
	"sitc":                "classification.product_sitc",
	"services_unilateral": "classification.product_services_unilateral",
	"services_bilateral":  "classification.product_services_bilateral",
}

// TableDescription names a schema-qualified table and its prompt-facing
// description, mirroring original_source table_descriptions.json rows
// (a data file not present in the retrieval pack; this is a representative
// static library per SPEC_FULL.md "Text-to-SQL few-shot example library").
type TableDescription struct {
	TableName string
	Context   string
}

// groupAggregateMarker identifies a data table as a large group-level
// aggregate that get_table_info excludes (spec.md §4.5 node 4 "Exclude any
// data table whose name contains the group-level aggregate marker").
const groupAggregateMarker = "group_group_"

// tableDescriptions mirrors the shape of table_descriptions.json: a map
// from schema name to its tables, plus a "classification" bucket holding
// the shared lookup tables joined against from every data schema.
var tableDescriptions = map[string][]TableDescription{
	"hs92": {
		{TableName: "country_year", Context: "Country-level trade aggregates by year for HS92 goods: export/import value, ECI, COI."},
		{TableName: "country_product_year_4", Context: "Country-product bilateral-free exports at HS92 4-digit level, by year: export value, RCA, distance, COG."},
		{TableName: "country_country_product_year_4", Context: "Bilateral country-partner-product exports at HS92 4-digit level, by year."},
		{TableName: "group_group_product_year_4", Context: "Group-to-group (region/income-group) aggregate exports at HS92 4-digit level. Large aggregate table."},
		{TableName: "product_year_4", Context: "Global product-level exports at HS92 4-digit level, by year: total value, PCI."},
	},
	"hs12": {
		{TableName: "country_year", Context: "Country-level trade aggregates by year for HS12 goods."},
		{TableName: "country_product_year_4", Context: "Country-product exports at HS12 4-digit level, by year."},
		{TableName: "country_country_product_year_4", Context: "Bilateral country-partner-product exports at HS12 4-digit level, by year."},
	},
	"sitc": {
		{TableName: "country_year", Context: "Country-level trade aggregates by year for SITC goods."},
		{TableName: "country_product_year_2", Context: "Country-product exports at SITC 2-digit level, by year."},
	},
	"services_unilateral": {
		{TableName: "country_product_year", Context: "Country-level services exports by service category and year (exporter-product-year)."},
	},
	"services_bilateral": {
		{TableName: "country_country_product_year", Context: "Bilateral services exports between exporter and importer, by service category and year."},
	},
	"classification": {
		{TableName: "location_country", Context: "Country-level data with names, ISO codes, and hierarchical information."},
		{TableName: "product_hs92", Context: "HS92 product classification codes, names, and hierarchy levels."},
		{TableName: "product_hs12", Context: "HS12 product classification codes, names, and hierarchy levels."},
		{TableName: "product_sitc", Context: "SITC product classification codes, names, and hierarchy levels."},
		{TableName: "product_services_unilateral", Context: "Services product classification codes and names (unilateral)."},
		{TableName: "product_services_bilateral", Context: "Services product classification codes and names (bilateral)."},
	},
}

// classificationTablesForSchemas returns the specific classification
// lookup tables a set of data schemas needs for JOINs: the country table
// always, plus the matching product table per schema. Mirrors
// original_source sql_pipeline.py _classification_tables_for_schemas.
func classificationTablesForSchemas(schemas []string) []TableDescription {
	classificationEntries := make(map[string]TableDescription, len(tableDescriptions["classification"]))
	for _, t := range tableDescriptions["classification"] {
		classificationEntries[t.TableName] = t
	}

	var out []TableDescription
	seen := map[string]bool{}

	out = append(out, TableDescription{
		TableName: "classification.location_country",
		Context:   classificationEntries["location_country"].Context,
	})
	seen["classification.location_country"] = true

	for _, schema := range schemas {
		full, ok := SchemaToProductsTable[schema]
		if !ok || seen[full] {
			continue
		}
		tableName := full[len("classification."):]
		entry, ok := classificationEntries[tableName]
		if !ok {
			continue
		}
		out = append(out, TableDescription{TableName: full, Context: entry.Context})
		seen[full] = true
	}
	return out
}

// tablesInSchemas returns every data table for the given schemas,
// schema-qualified, mirroring original_source get_tables_in_schemas. Tables
// whose name contains the group-level aggregate marker are excluded
// (spec.md §4.5 node 4).
func tablesInSchemas(schemas []string) []TableDescription {
	var out []TableDescription
	for _, schema := range schemas {
		for _, t := range tableDescriptions[schema] {
			if strings.Contains(t.TableName, groupAggregateMarker) {
				continue
			}
			out = append(out, TableDescription{
				TableName: schema + "." + t.TableName,
				Context:   t.Context,
			})
		}
	}
	return out
}

// ValidTablesForSchemas returns the set of schema-qualified table names a
// request over the given classification schemas is allowed to reference:
// every data table in those schemas plus their joined classification
// lookup tables. Used by validate_sql as a fallback/supplement to the
// tables named in the generated DDL.
func ValidTablesForSchemas(schemas []string) map[string]bool {
	valid := make(map[string]bool)
	for _, t := range tablesInSchemas(schemas) {
		valid[t.TableName] = true
	}
	for _, t := range classificationTablesForSchemas(schemas) {
		valid[t.TableName] = true
	}
	return valid
}

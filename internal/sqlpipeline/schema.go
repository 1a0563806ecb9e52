// Package sqlpipeline implements the eight SQL pipeline nodes (spec.md
// §4.5): extract_tool_question, extract_products, lookup_codes,
// get_table_info, generate_sql, validate_sql, execute_sql, format_results.
// Grounded on original_source/src/sql_pipeline.py,
// src/product_and_schema_lookup.py, src/sql_multiple_schemas.py, and
// src/sql_validation.py.
package sqlpipeline

import (
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// productExtractionSchemaDoc mirrors original_source
// SchemasAndProductsFound (product_and_schema_lookup.py): the set of
// classification schemas implied by the question, the products mentioned
// that still need code lookup, and whether any lookup is required at all.
var productExtractionSchemaDoc = []byte(`{
  "type": "object",
  "required": ["classification_schemas", "products", "requires_lookup"],
  "properties": {
    "classification_schemas": {
      "type": "array",
      "items": {"type": "string", "enum": ["hs92", "hs12", "sitc", "services_unilateral", "services_bilateral"]}
    },
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "schema", "codes"],
        "properties": {
          "name": {"type": "string"},
          "schema": {"type": "string"},
          "codes": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "requires_lookup": {"type": "boolean"}
  }
}`)

// codeSelectionSchemaDoc mirrors original_source ProductCodesMapping: the
// final, LLM-arbitrated code selection across combined LLM + DB candidates.
var codeSelectionSchemaDoc = []byte(`{
  "type": "object",
  "required": ["mappings"],
  "properties": {
    "mappings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "schema", "codes"],
        "properties": {
          "name": {"type": "string"},
          "schema": {"type": "string"},
          "codes": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`)

var (
	productExtractionSchema = modelclient.MustCompileSchema("sqlpipeline_product_extraction.json", productExtractionSchemaDoc)
	codeSelectionSchema     = modelclient.MustCompileSchema("sqlpipeline_code_selection.json", codeSelectionSchemaDoc)
)

// productExtractionResult is the unmarshal target for productExtractionSchema.
type productExtractionResult struct {
	ClassificationSchemas []string         `json:"classification_schemas"`
	Products              []productMention `json:"products"`
	RequiresLookup        bool             `json:"requires_lookup"`
}

type productMention struct {
	Name   string   `json:"name"`
	Schema string   `json:"schema"`
	Codes  []string `json:"codes"`
}

// codeSelectionResult is the unmarshal target for codeSelectionSchema.
type codeSelectionResult struct {
	Mappings []productMention `json:"mappings"`
}

package graphqlpipeline

import "github.com/shreyasgm/atlas-router/internal/modelclient"

var classificationSchemaDoc = []byte(`{
  "type": "object",
  "required": ["reasoning", "query_type", "api_target"],
  "properties": {
    "reasoning": {"type": "string"},
    "query_type": {
      "type": "string",
      "enum": [
        "country_profile", "country_profile_exports", "country_profile_complexity",
        "country_lookback", "new_products", "treemap_products", "treemap_partners",
        "treemap_bilateral", "overtime_products", "overtime_partners", "marketshare",
        "product_space", "feasibility", "feasibility_table", "growth_opportunities",
        "product_table", "country_year", "product_info", "bilateral_aggregate",
        "explore_bilateral", "explore_group", "global_datum", "explore_data_availability",
        "reject"
      ]
    },
    "api_target": {"type": "string", "enum": ["explore", "country_pages"]},
    "rejection_reason": {"type": "string"}
  }
}`)

var extractionSchemaDoc = []byte(`{
  "type": "object",
  "properties": {
    "country": {"type": "string"},
    "country_code_guess": {"type": "string"},
    "partner": {"type": "string"},
    "partner_code_guess": {"type": "string"},
    "product": {"type": "string"},
    "product_code_guess": {"type": "string"},
    "product_level": {"type": "integer"},
    "product_class": {"type": "string"},
    "year": {"type": "integer"},
    "year_min": {"type": "integer"},
    "year_max": {"type": "integer"},
    "group_name": {"type": "string"},
    "group_type": {"type": "string"},
    "lookback_years": {"type": "integer", "enum": [3, 5, 10, 15]},
    "services_class": {"type": "string"}
  }
}`)

var (
	classificationSchema = modelclient.MustCompileSchema("graphqlpipeline_classification.json", classificationSchemaDoc)
	extractionSchema     = modelclient.MustCompileSchema("graphqlpipeline_extraction.json", extractionSchemaDoc)
)

// classificationResult is the unmarshal target for classificationSchema
// (spec.md §4.6 node 2). reasoning is truncated to 2000 characters by
// the modelclient's generic reasoning-field redaction before this is
// unmarshaled; see internal/modelclient/sidecar.go redactReasoning.
type classificationResult struct {
	Reasoning       string    `json:"reasoning"`
	QueryType       QueryType `json:"query_type"`
	APITarget       APITarget `json:"api_target"`
	RejectionReason string    `json:"rejection_reason"`
}

// entityExtraction is the unmarshal target for extractionSchema (spec.md
// §4.6 node 3). Every field is a best-effort guess from the question text;
// resolve_ids turns the country/partner/product guesses into verified ids.
type entityExtraction struct {
	Country          string `json:"country"`
	CountryCodeGuess string `json:"country_code_guess"`
	Partner          string `json:"partner"`
	PartnerCodeGuess string `json:"partner_code_guess"`
	Product          string `json:"product"`
	ProductCodeGuess string `json:"product_code_guess"`
	ProductLevel     int    `json:"product_level"`
	ProductClass     string `json:"product_class"`
	Year             int    `json:"year"`
	YearMin          int    `json:"year_min"`
	YearMax          int    `json:"year_max"`
	GroupName        string `json:"group_name"`
	GroupType        string `json:"group_type"`
	LookbackYears    int    `json:"lookback_years"`
	ServicesClass    string `json:"services_class"`
}

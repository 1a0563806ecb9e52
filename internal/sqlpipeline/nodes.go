package sqlpipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

var goodsSchemas = []string{"hs92", "hs12", "sitc"}
var servicesSchemas = []string{"services_unilateral", "services_bilateral"}

func isGoodsSchema(schema string) bool {
	for _, s := range goodsSchemas {
		if s == schema {
			return true
		}
	}
	return false
}

func isServicesSchema(schema string) bool {
	for _, s := range servicesSchemas {
		if s == schema {
			return true
		}
	}
	return false
}

// toolArgs is the shape every sqlpipeline-bound tool call carries.
type toolArgs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// extractToolQuestion lifts question/context from the first tool call
// (spec.md §4.5 node 1); any remaining calls are handled by the terminal
// format_results stub, not here.
func extractToolQuestion(calls []agentstate.ToolCall) (question, toolContext string, err error) {
	if len(calls) == 0 {
		return "", "", fmt.Errorf("sqlpipeline: no tool calls to process")
	}
	var args toolArgs
	if err := json.Unmarshal(calls[0].Arguments, &args); err != nil {
		return "", "", fmt.Errorf("sqlpipeline: parse tool call arguments: %w", err)
	}
	return args.Question, args.Context, nil
}

// applyOverrides mutates extraction in place per spec.md §4.5 node 2: an
// explicit schema override wins outright; absent that, a mode override
// filters the schema list to goods-only or services-only, falling back to
// a documented default (hs92 / services_unilateral) if the filter would
// otherwise empty the list.
func applyOverrides(extraction *productExtractionResult, overrides agentstate.Overrides) {
	if overrides.Schema != "" {
		extraction.ClassificationSchemas = []string{overrides.Schema}
		for i := range extraction.Products {
			extraction.Products[i].Schema = overrides.Schema
		}
		return
	}

	if overrides.Mode == "" {
		return
	}

	var keep func(string) bool
	var fallback string
	switch overrides.Mode {
	case "goods":
		keep, fallback = isGoodsSchema, "hs92"
	case "services":
		keep, fallback = isServicesSchema, "services_unilateral"
	default:
		return
	}

	var filtered []string
	for _, s := range extraction.ClassificationSchemas {
		if keep(s) {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		filtered = []string{fallback}
	}
	extraction.ClassificationSchemas = filtered

	for i, p := range extraction.Products {
		if !keep(p.Schema) {
			extraction.Products[i].Schema = fallback
		}
	}
}

// extractProducts invokes the Model to classify the question and surface
// product mentions needing code lookup, then applies any active override
// (spec.md §4.5 node 2).
func (p *Pipeline) extractProducts(ctx context.Context, question, toolContext string, overrides agentstate.Overrides) (productExtractionResult, error) {
	prompt := fmt.Sprintf("Identify the trade classification schema(s) implied by this question and any specific products mentioned that need code lookup.\nQuestion: %s\nContext: %s", question, toolContext)

	var result productExtractionResult
	err := p.model.InvokeStructured(ctx, modelclient.Request{
		SystemPrompt: "You classify trade-data questions into classification schemas (hs92, hs12, sitc, services_unilateral, services_bilateral) and extract mentioned products.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: prompt}},
	}, productExtractionSchema, &result)
	if err != nil {
		return productExtractionResult{}, fmt.Errorf("sqlpipeline: extract_products model call: %w", err)
	}

	applyOverrides(&result, overrides)
	return result, nil
}

// formatCandidatesForPrompt renders combined LLM + DB code candidates for
// the final Model-arbitrated selection call.
func formatCandidatesForPrompt(results []productSearchResult) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Product: %s (schema: %s)\n", r.Name, r.Schema)
		if len(r.LLMSuggestions) > 0 {
			b.WriteString("  LLM-suggested codes verified against the database:\n")
			for _, c := range r.LLMSuggestions {
				fmt.Fprintf(&b, "    %s: %s (level %s)\n", c.Code, c.Name, c.Level)
			}
		}
		if len(r.DBSuggestions) > 0 {
			b.WriteString("  Candidates from a name search:\n")
			for _, c := range r.DBSuggestions {
				fmt.Fprintf(&b, "    %s: %s (level %s)\n", c.Code, c.Name, c.Level)
			}
		}
	}
	return b.String()
}

// lookupCodes resolves, then Model-arbitrates, a final code set per product
// mention (spec.md §4.5 node 3).
func (p *Pipeline) lookupCodes(ctx context.Context, products []productMention) (codeSelectionResult, error) {
	if len(products) == 0 {
		return codeSelectionResult{}, nil
	}

	searchResults := make([]productSearchResult, 0, len(products))
	for _, prod := range products {
		official, err := p.codes.officialDetails(ctx, prod.Schema, prod.Codes)
		if err != nil {
			return codeSelectionResult{}, fmt.Errorf("sqlpipeline: lookup_codes official details: %w", err)
		}
		textMatches, err := p.codes.textSearch(ctx, prod.Name, prod.Schema)
		if err != nil {
			return codeSelectionResult{}, fmt.Errorf("sqlpipeline: lookup_codes text search: %w", err)
		}
		searchResults = append(searchResults, productSearchResult{
			Name:           prod.Name,
			Schema:         prod.Schema,
			LLMSuggestions: official,
			DBSuggestions:  textMatches,
		})
	}

	prompt := "Pick the final product code(s) for each product below from the listed candidates. Prefer exact matches; include multiple codes only if the question spans several products.\n\n" + formatCandidatesForPrompt(searchResults)

	var selection codeSelectionResult
	err := p.model.InvokeStructured(ctx, modelclient.Request{
		SystemPrompt: "You select final product classification codes from verified candidates.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: prompt}},
	}, codeSelectionSchema, &selection)
	if err != nil {
		return codeSelectionResult{}, fmt.Errorf("sqlpipeline: lookup_codes selection model call: %w", err)
	}
	return selection, nil
}

// maxQueriesExceededMessages builds the terminal stub for every call when
// the per-turn query cap has already been reached.
func maxQueriesExceededMessages(calls []agentstate.ToolCall) []agentstate.Message {
	msgs := make([]agentstate.Message, 0, len(calls))
	for _, c := range calls {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Maximum number of SQL queries for this turn has already been reached."))
	}
	return msgs
}

// formatResultMessages builds one tool message per call id (spec.md §4.5
// node 8): the first carries the real outcome, the rest get the
// only-one-query-per-call stub.
func formatResultMessages(calls []agentstate.ToolCall, state *agentstate.State) []agentstate.Message {
	if len(calls) == 0 {
		return nil
	}

	var content string
	switch {
	case state.LastError != "":
		content = "Query failed: " + state.LastError
	default:
		content = formatSQLResult(state.SQLQuery, state.SQLResult, state.SQLExecutionTimeMs)
	}

	msgs := []agentstate.Message{agentstate.NewTool(calls[0].ID, calls[0].Name, content)}
	for _, c := range calls[1:] {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Only one SQL query can be executed per tool call; this request was ignored."))
	}
	return msgs
}

func formatSQLResult(sql string, result agentstate.SQLResult, execMs int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SQL: %s\n", sql)
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(result.Columns, ", "))
	fmt.Fprintf(&b, "Row count: %d\n", len(result.Rows))
	fmt.Fprintf(&b, "Execution time: %dms\n", execMs)
	maxPreview := 20
	for i, row := range result.Rows {
		if i >= maxPreview {
			fmt.Fprintf(&b, "... (%d more rows)\n", len(result.Rows)-maxPreview)
			break
		}
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintf(&b, "%s\n", strings.Join(parts, ", "))
	}
	return b.String()
}

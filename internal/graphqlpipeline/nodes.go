package graphqlpipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/links"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

type toolArgs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// extractGraphQLQuestion lifts question/context from the first tool call
// and resets every graphql_* state field, preventing cross-turn bleed
// (spec.md §4.6 node 1).
func extractGraphQLQuestion(state *agentstate.State, calls []agentstate.ToolCall) (question, toolContext string, err error) {
	state.ResetGraphQLFields()
	if len(calls) == 0 {
		return "", "", fmt.Errorf("graphqlpipeline: no tool calls to process")
	}
	var args toolArgs
	if err := json.Unmarshal(calls[0].Arguments, &args); err != nil {
		return "", "", fmt.Errorf("graphqlpipeline: parse tool call arguments: %w", err)
	}
	return args.Question, args.Context, nil
}

// classifyQuery invokes the Model to produce the query_type/api_target
// classification (spec.md §4.6 node 2).
func (p *Pipeline) classifyQuery(ctx context.Context, question, toolContext string) (classificationResult, error) {
	prompt := fmt.Sprintf("Classify this trade-data question into the closed set of GraphQL query types and decide which API should serve it.\nQuestion: %s\nContext: %s", question, toolContext)
	var result classificationResult
	err := p.model.InvokeStructured(ctx, modelclient.Request{
		SystemPrompt: "You classify trade-data questions for a GraphQL router. Reject questions that this system cannot answer.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: prompt}},
	}, classificationSchema, &result)
	if err != nil {
		return classificationResult{}, fmt.Errorf("graphqlpipeline: classify_query model call: %w", err)
	}
	if !IsValid(result.QueryType) {
		return classificationResult{}, fmt.Errorf("graphqlpipeline: model returned unknown query_type %q", result.QueryType)
	}
	return result, nil
}

// extractEntities invokes the Model to pull entity guesses out of the
// question (spec.md §4.6 node 3); skipped entirely when classify_query
// rejected.
func (p *Pipeline) extractEntities(ctx context.Context, question, toolContext string) (entityExtraction, error) {
	prompt := fmt.Sprintf("Extract any country, partner, product, year, group, or lookback information mentioned.\nQuestion: %s\nContext: %s", question, toolContext)
	var result entityExtraction
	err := p.model.InvokeStructured(ctx, modelclient.Request{
		SystemPrompt: "You extract structured entity mentions from a trade-data question. Omit fields that aren't mentioned.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: prompt}},
	}, extractionSchema, &result)
	if err != nil {
		return entityExtraction{}, fmt.Errorf("graphqlpipeline: extract_entities model call: %w", err)
	}
	return result, nil
}

// resolveIDs resolves country/partner/product/group mentions and generates
// presentation links from the canonical numeric ids (spec.md §4.6 node 4);
// Run then formats the variables for the chosen API target via
// formatIDsForAPI.
func (p *Pipeline) resolveIDs(ctx context.Context, queryType QueryType, apiTarget APITarget, ext entityExtraction) (resolvedParams, []string, []links.Link) {
	var notes []string

	rp := resolvedParams{ProductClass: ext.ProductClass, ServicesClass: ext.ServicesClass}
	rp.Country = p.resolveEntity(ctx, p.countries, "country", ext.CountryCodeGuess, ext.Country, &notes)
	rp.Partner = p.resolveEntity(ctx, p.countries, "partner", ext.PartnerCodeGuess, ext.Partner, &notes)
	rp.Product = p.resolveProduct(ctx, ext.ProductCodeGuess, ext.Product, &notes)
	if ext.GroupName != "" && p.groups != nil {
		rp.Group = p.resolveEntity(ctx, p.groups, "group", ext.GroupName, ext.GroupName, &notes)
	}
	rp.GroupType = ext.GroupType

	if ext.Year != 0 {
		y := ext.Year
		rp.Year = &y
	}
	if ext.YearMin != 0 {
		y := ext.YearMin
		rp.YearMin = &y
	}
	if ext.YearMax != 0 {
		y := ext.YearMax
		rp.YearMax = &y
	}
	if ext.ProductLevel != 0 {
		l := ext.ProductLevel
		rp.ProductLevel = &l
	}
	if ext.LookbackYears != 0 {
		l := ext.LookbackYears
		rp.LookbackYears = &l
	}

	linkParams := links.Params{
		CountryID:             rp.Country.ID,
		CountryName:           rp.Country.Name,
		PartnerID:             rp.Partner.ID,
		PartnerName:           rp.Partner.Name,
		ProductID:             rp.Product.ID,
		ProductName:           rp.Product.Name,
		ProductClassification: ext.ProductClass,
		Year:                  rp.Year,
		YearMin:               rp.YearMin,
		YearMax:               rp.YearMax,
		ProductLevel:          rp.ProductLevel,
		GroupName:             ext.GroupName,
		ResolutionNotes:       notes,
	}
	if rp.Group.Found {
		id := rp.Group.ID
		linkParams.GroupID = &id
	}
	generated, _ := links.Generate(string(queryType), linkParams)

	return rp, notes, generated
}

// maxQueriesExceededMessages mirrors sqlpipeline's terminal stub for every
// call once the per-turn query cap is reached.
func maxQueriesExceededMessages(calls []agentstate.ToolCall) []agentstate.Message {
	msgs := make([]agentstate.Message, 0, len(calls))
	for _, c := range calls {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Maximum number of GraphQL queries for this turn has already been reached."))
	}
	return msgs
}

func onlyOneQueryStub(calls []agentstate.ToolCall, first string) []agentstate.Message {
	if len(calls) == 0 {
		return nil
	}
	msgs := []agentstate.Message{agentstate.NewTool(calls[0].ID, calls[0].Name, first)}
	for _, c := range calls[1:] {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Only one GraphQL query can be executed per tool call; this request was ignored."))
	}
	return msgs
}

func linkURLs(ls []links.Link) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.URL
	}
	return out
}

package graphqlpipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/graphqlclient"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// Pipeline wires the six GraphQL pipeline nodes (spec.md §4.6) into the
// linear sequence extract_graphql_question → classify_query →
// extract_entities → resolve_ids → build_and_execute_graphql →
// format_graphql_results.
//
// countries, products, services, and groups must each register "code" (an
// exact-match identifier: ISO alpha-3 for countries, classification code
// for products), "name" (normalized display name, used by Search), and
// "id" (string form of the numeric catalog id, used by post-processing
// enrichment) indexes. groups may be nil if group/region queries are out
// of scope for a deployment.
type Pipeline struct {
	model modelclient.Client

	countries *catalog.Cache
	products  *catalog.Cache
	services  *catalog.Cache
	groups    *catalog.Cache

	exploreClient      *graphqlclient.Client
	countryPagesClient *graphqlclient.Client

	logger            *slog.Logger
	maxQueriesPerTurn int
}

// New builds a Pipeline. services and groups may be nil.
func New(model modelclient.Client, countries, products, services, groups *catalog.Cache, exploreClient, countryPagesClient *graphqlclient.Client, logger *slog.Logger, maxQueriesPerTurn int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		model:              model,
		countries:          countries,
		products:           products,
		services:           services,
		groups:             groups,
		exploreClient:      exploreClient,
		countryPagesClient: countryPagesClient,
		logger:             logger,
		maxQueriesPerTurn:  maxQueriesPerTurn,
	}
}

// Run executes the pipeline against the tool calls the agent node routed to
// the GraphQL tool this turn (spec.md §4.6 node 6 "Four cases").
func (p *Pipeline) Run(ctx context.Context, state *agentstate.State, calls []agentstate.ToolCall) error {
	if len(calls) == 0 {
		return nil
	}
	if state.QueriesExecuted >= p.maxQueriesPerTurn {
		state.AppendMessages(maxQueriesExceededMessages(calls)...)
		return nil
	}

	question, toolContext, err := extractGraphQLQuestion(state, calls)
	if err != nil {
		return err
	}
	state.GraphQLQuestion = question
	state.GraphQLContext = toolContext
	agentstate.EmitNode(ctx, "extract_graphql_question", state)

	classification, err := p.classifyQuery(ctx, question, toolContext)
	if err != nil {
		return err
	}
	state.GraphQLClassification = string(classification.QueryType)
	state.GraphQLAPITarget = string(classification.APITarget)
	agentstate.EmitNode(ctx, "classify_query", state)

	if classification.QueryType == QueryReject {
		state.GraphQLRejectionReason = classification.RejectionReason
		state.AppendMessages(onlyOneQueryStub(calls, "This question can't be answered by the available data: "+classification.RejectionReason)...)
		agentstate.EmitNode(ctx, "format_graphql_results", state)
		return nil
	}

	ext, err := p.extractEntities(ctx, question, toolContext)
	if err != nil {
		p.logger.Warn("graphqlpipeline: extract_entities failed", "err", err)
		state.AppendMessages(onlyOneQueryStub(calls, "Could not extract the information needed to answer this question: "+err.Error())...)
		agentstate.EmitNode(ctx, "format_graphql_results", state)
		return nil
	}
	state.GraphQLExtraction = toMap(ext)
	agentstate.EmitNode(ctx, "extract_entities", state)

	rp, notes, generatedLinks := p.resolveIDs(ctx, classification.QueryType, classification.APITarget, ext)
	state.GraphQLResolutionNotes = notes
	state.GraphQLLinks = linkURLs(generatedLinks)

	variables := formatIDsForAPI(classification.APITarget, rp)
	state.GraphQLResolvedParams = variables
	agentstate.EmitNode(ctx, "resolve_ids", state)

	builder, ok := builderDispatch[classification.QueryType]
	if !ok {
		return fmt.Errorf("graphqlpipeline: no builder registered for query_type %q", classification.QueryType)
	}
	query, vars := builder(variables, false)
	state.GraphQLQuery = query
	state.GraphQLVariables = vars

	client := p.exploreClient
	if classification.APITarget == APITargetCountryPages {
		client = p.countryPagesClient
	}

	start := time.Now()
	data, err := client.Execute(ctx, query, vars, state.SessionID)
	state.GraphQLExecutionTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		state.LastError = err.Error()
		state.GraphQLLinks = nil
		agentstate.EmitNode(ctx, "build_and_execute_graphql", state)
		state.AppendMessages(onlyOneQueryStub(calls, "GraphQL query failed: "+err.Error())...)
		agentstate.EmitNode(ctx, "format_graphql_results", state)
		return nil
	}
	state.LastError = ""
	state.GraphQLRawResponse = data
	agentstate.EmitNode(ctx, "build_and_execute_graphql", state)

	processed, err := postProcessResponse(classification.QueryType, data, p.products, p.countries)
	if err != nil {
		return fmt.Errorf("graphqlpipeline: post-process: %w", err)
	}

	content, err := json.Marshal(processed)
	if err != nil {
		return fmt.Errorf("graphqlpipeline: encode result: %w", err)
	}
	state.AppendMessages(onlyOneQueryStub(calls, string(content))...)
	state.IncrementQueriesExecuted()
	agentstate.EmitNode(ctx, "format_graphql_results", state)
	return nil
}

func toMap(ext entityExtraction) map[string]any {
	raw, err := json.Marshal(ext)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

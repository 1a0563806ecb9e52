package agentgraph

import "github.com/shreyasgm/atlas-router/internal/modelclient"

// Tool names the agent's routing switch recognizes (spec.md §4.8 "Routing
// after agent"). Any other name the model invents is treated as unknown and
// ends the turn without fabricating a tool message.
const (
	ToolSQL     = "query_tool"
	ToolGraphQL = "atlas_graphql"
	ToolDocs    = "docs_tool"
)

var toolArgsParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The self-contained question this tool call should answer.",
		},
		"context": map[string]any{
			"type":        "string",
			"description": "Any additional context from the conversation needed to answer the question.",
		},
	},
	"required": []string{"question"},
}

var sqlToolSpec = modelclient.ToolSpec{
	Name:        ToolSQL,
	Description: "Answer a question by querying the trade-data relational database (country/product-level exports, imports, rankings).",
	Parameters:  toolArgsParameters,
}

var graphqlToolSpec = modelclient.ToolSpec{
	Name:        ToolGraphQL,
	Description: "Answer a question by querying the Atlas GraphQL APIs (treemaps, overtime series, market share, product space, feasibility, growth opportunities, and similar visualization-backed queries).",
	Parameters:  toolArgsParameters,
}

var docsToolSpec = modelclient.ToolSpec{
	Name:        ToolDocs,
	Description: "Answer a question about how the Atlas of Economic Complexity works, its methodology, or its data sources, from local documentation. Does not count against the per-turn query budget.",
	Parameters:  toolArgsParameters,
}

// toolsForMode returns the bound tool set for a resolved agent mode
// (spec.md §4.8 "Mode resolution").
func toolsForMode(mode resolvedMode) []modelclient.ToolSpec {
	switch mode {
	case modeSQLOnly:
		return []modelclient.ToolSpec{sqlToolSpec, docsToolSpec}
	case modeGraphQLOnly:
		return []modelclient.ToolSpec{graphqlToolSpec, docsToolSpec}
	case modeGraphQLSQL:
		return []modelclient.ToolSpec{sqlToolSpec, graphqlToolSpec, docsToolSpec}
	default:
		return []modelclient.ToolSpec{docsToolSpec}
	}
}

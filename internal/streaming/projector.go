package streaming

import (
	"fmt"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/sqlpipeline"
)

// projector maps a node name to a pure projection of a state snapshot into
// a small, presentation-friendly payload (spec.md §4.10 "Pipeline-state
// extraction"). Design Note "Streaming + state extraction → event
// projection layer": the node-name set is sealed here, and projectNode
// fails loudly (returns an error rather than silently dropping the event)
// if a node flows through that was never registered — almost certainly a
// sign a new pipeline node was added without updating this table.
var projector = map[string]func(agentstate.State) map[string]any{
	"agent": func(s agentstate.State) map[string]any {
		var lastCall string
		if calls := agentstate.LastAssistantToolCalls(s.Messages); len(calls) > 0 {
			lastCall = calls[0].Name
		}
		return map[string]any{"stage": "agent", "toolCall": lastCall}
	},
	"max_queries_exceeded": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "max_queries_exceeded"}
	},

	// SQL pipeline (spec.md §4.5).
	"extract_tool_question": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "extract_tool_question", "question": s.SQLQuestion, "context": s.SQLContext}
	},
	"extract_products": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "extract_products", "products": s.SQLProducts}
	},
	"lookup_codes": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "lookup_codes", "resolvedCodes": s.SQLResolvedCodes}
	},
	"get_table_info": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "get_table_info", "hasTableInfo": s.SQLTableInfo != ""}
	},
	"generate_sql": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "generate_sql", "sql": s.SQLQuery}
	},
	"validate_sql": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "validate_sql", "valid": s.LastError == "", "error": s.LastError}
	},
	"execute_sql": func(s agentstate.State) map[string]any {
		return map[string]any{
			"stage":           "execute_sql",
			"sql":             s.SQLQuery,
			"columns":         s.SQLResult.Columns,
			"rows":            s.SQLResult.Rows,
			"rowCount":        len(s.SQLResult.Rows),
			"executionTimeMs": s.SQLExecutionTimeMs,
			"tables":          sqlpipeline.ReferencedTables(s.SQLQuery),
		}
	},
	"format_results": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "format_results", "error": s.LastError}
	},

	// GraphQL pipeline (spec.md §4.6).
	"extract_graphql_question": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "extract_graphql_question", "question": s.GraphQLQuestion, "context": s.GraphQLContext}
	},
	"classify_query": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "classify_query", "queryType": s.GraphQLClassification, "apiTarget": s.GraphQLAPITarget}
	},
	"extract_entities": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "extract_entities", "extraction": s.GraphQLExtraction}
	},
	"resolve_ids": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "resolve_ids", "resolvedParams": s.GraphQLResolvedParams, "resolutionNotes": s.GraphQLResolutionNotes}
	},
	"build_and_execute_graphql": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "build_and_execute_graphql", "executionTimeMs": s.GraphQLExecutionTimeMs, "error": s.LastError}
	},
	"format_graphql_results": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "format_graphql_results", "atlasLinks": s.GraphQLLinks, "queryIndex": s.QueriesExecuted}
	},

	// Docs pipeline (spec.md §4.7).
	"extract_docs_question": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "extract_docs_question", "question": s.DocsQuestion}
	},
	"select_and_synthesize": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "select_and_synthesize", "answer": s.DocsAnswer}
	},
	"format_docs_result": func(s agentstate.State) map[string]any {
		return map[string]any{"stage": "format_docs_result"}
	},
}

// projectNode applies the registered projector for node, or reports an
// error for a node name outside the sealed enumeration.
func projectNode(node string, snap agentstate.State) (map[string]any, error) {
	fn, ok := projector[node]
	if !ok {
		return nil, fmt.Errorf("streaming: unknown pipeline node %q flowed through the event projector", node)
	}
	return fn(snap), nil
}

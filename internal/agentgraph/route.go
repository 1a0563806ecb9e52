package agentgraph

import "github.com/shreyasgm/atlas-router/internal/agentstate"

// destination is one of the explicit transitions out of the routing switch
// (spec.md §4.8 "Routing after agent" — Design Note "Graph as a state
// machine": a closed set of named transitions instead of a dynamically
// built graph).
type destination int

const (
	destEnd destination = iota
	destSQL
	destGraphQL
	destDocs
	destMaxQueriesExceeded
)

// route inspects the last assistant message and decides the next
// transition, mirroring spec.md §4.8 exactly:
//
//	t == "docs_tool"              -> extract_docs_question (bypasses budget)
//	queries_executed >= maxUses   -> max_queries_exceeded
//	t == "query_tool"             -> extract_tool_question
//	t == "atlas_graphql"          -> extract_graphql_question
//	unknown tool name             -> END
func route(state *agentstate.State, maxToolUses int) (destination, []agentstate.ToolCall) {
	calls := agentstate.LastAssistantToolCalls(state.Messages)
	if len(calls) == 0 {
		return destEnd, nil
	}

	t := calls[0].Name
	if t == ToolDocs {
		return destDocs, calls
	}
	if state.QueriesExecuted >= maxToolUses {
		return destMaxQueriesExceeded, calls
	}
	switch t {
	case ToolSQL:
		return destSQL, calls
	case ToolGraphQL:
		return destGraphQL, calls
	default:
		return destEnd, nil
	}
}

// maxQueriesExceededMessages builds the terminal tool message spec.md §7
// requires: "agent gets one last message saying so and must produce a
// final answer." One message per pending call id, matching the
// message-balance invariant (spec.md §8).
func maxQueriesExceededMessages(calls []agentstate.ToolCall) []agentstate.Message {
	msgs := make([]agentstate.Message, 0, len(calls))
	for _, c := range calls {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Maximum number of data queries for this turn has already been reached; answer with what you already have."))
	}
	return msgs
}

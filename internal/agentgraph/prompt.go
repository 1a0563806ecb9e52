package agentgraph

import (
	"fmt"
	"strings"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

const nudgeMessage = "Before answering, call a tool to retrieve the data this question needs. " +
	"If the question is not about trade data (it's conversational, harmful, or otherwise outside " +
	"what the data tools can answer), you may answer directly without calling a tool."

// buildSystemPrompt constructs the agent node's system prompt deterministically
// from the resolved mode, the per-turn budget, the row cap, and any active
// override constraints (spec.md §4.8 "Agent node"). Determinism matters: two
// requests with the same mode/budget/overrides must get byte-identical
// prompts, since the model call itself is the only non-deterministic step.
func buildSystemPrompt(mode resolvedMode, maxToolUses, rowCap int, overrides agentstate.Overrides) string {
	var b strings.Builder
	b.WriteString("You are a trade-data research assistant for the Atlas of Economic Complexity. ")
	b.WriteString("Answer questions by calling the tools available to you; never fabricate data.\n\n")

	switch mode {
	case modeSQLOnly:
		b.WriteString("You can query the relational trade database and local documentation. GraphQL visualization queries are unavailable this turn.\n")
	case modeGraphQLOnly:
		b.WriteString("You can query the Atlas GraphQL APIs and local documentation. Direct SQL queries are unavailable this turn.\n")
	case modeGraphQLSQL:
		b.WriteString("You can query the relational trade database, the Atlas GraphQL APIs, and local documentation.\n")
	}

	fmt.Fprintf(&b, "You may execute at most %d data queries this turn; after that, you must answer with what you already have.\n", maxToolUses)
	fmt.Fprintf(&b, "Any query returning tabular rows is capped at %d rows; mention if results may be truncated.\n", rowCap)

	if overrides.Schema != "" {
		fmt.Fprintf(&b, "The user has fixed the trade classification schema to %q; use it for every SQL query.\n", overrides.Schema)
	}
	if overrides.Direction != "" {
		fmt.Fprintf(&b, "The user has fixed the trade direction to %q.\n", overrides.Direction)
	}
	if overrides.Mode != "" {
		fmt.Fprintf(&b, "The user has fixed the product domain to %q (goods vs. services).\n", overrides.Mode)
	}

	return b.String()
}

package agentgraph

import "github.com/shreyasgm/atlas-router/internal/agentstate"

// resolvedMode is the mode actually in effect for one agent-node invocation,
// after folding in a per-request override and, for AUTO, the live budget
// signal (spec.md §4.8 "Mode resolution"). Kept distinct from
// agentstate.AgentMode so AUTO is never observed downstream of resolution —
// every consumer (tool binding, system prompt) sees a concrete mode.
type resolvedMode string

const (
	modeSQLOnly     resolvedMode = "sql_only"
	modeGraphQLSQL  resolvedMode = "graphql_sql"
	modeGraphQLOnly resolvedMode = "graphql_only"
)

// budgetChecker reports whether the GraphQL budget currently has room, used
// only to resolve AUTO. Satisfied by *budget.Tracker.
type budgetChecker interface {
	IsAvailable(sessionID string) bool
}

// resolveMode applies the construction-time default, the override carried
// in state (if any), and the AUTO fallback rule: "if budget available →
// GRAPHQL_SQL, else SQL_ONLY".
func resolveMode(defaultMode agentstate.AgentMode, override string, sessionID string, budget budgetChecker) resolvedMode {
	mode := defaultMode
	if override != "" {
		mode = agentstate.AgentMode(override)
	}

	switch mode {
	case agentstate.ModeSQLOnly:
		return modeSQLOnly
	case agentstate.ModeGraphQLOnly:
		return modeGraphQLOnly
	case agentstate.ModeGraphQLSQL:
		return modeGraphQLSQL
	case agentstate.ModeAuto:
		if budget.IsAvailable(sessionID) {
			return modeGraphQLSQL
		}
		return modeSQLOnly
	default:
		// Unknown override value; the HTTP layer rejects these at 422
		// before they ever reach here, so falling back to the safest
		// mode is a defensive default rather than a reachable path.
		return modeSQLOnly
	}
}

package agentgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

type fakeBudget struct{ available bool }

func (f fakeBudget) IsAvailable(string) bool { return f.available }

func TestResolveMode_ExplicitModesIgnoreBudget(t *testing.T) {
	require.Equal(t, modeSQLOnly, resolveMode(agentstate.ModeSQLOnly, "", "", fakeBudget{available: true}))
	require.Equal(t, modeGraphQLOnly, resolveMode(agentstate.ModeGraphQLOnly, "", "", fakeBudget{available: false}))
	require.Equal(t, modeGraphQLSQL, resolveMode(agentstate.ModeGraphQLSQL, "", "", fakeBudget{available: false}))
}

func TestResolveMode_AutoFallsBackWhenBudgetExhausted(t *testing.T) {
	require.Equal(t, modeGraphQLSQL, resolveMode(agentstate.ModeAuto, "", "s1", fakeBudget{available: true}))
	require.Equal(t, modeSQLOnly, resolveMode(agentstate.ModeAuto, "", "s1", fakeBudget{available: false}))
}

func TestResolveMode_OverrideWinsOverDefault(t *testing.T) {
	require.Equal(t, modeGraphQLOnly, resolveMode(agentstate.ModeSQLOnly, "graphql_only", "", fakeBudget{available: true}))
}

func TestToolsForMode(t *testing.T) {
	require.ElementsMatch(t, []string{ToolSQL, ToolDocs}, toolNames(toolsForMode(modeSQLOnly)))
	require.ElementsMatch(t, []string{ToolGraphQL, ToolDocs}, toolNames(toolsForMode(modeGraphQLOnly)))
	require.ElementsMatch(t, []string{ToolSQL, ToolGraphQL, ToolDocs}, toolNames(toolsForMode(modeGraphQLSQL)))
}

func toolNames(specs []modelclient.ToolSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

package agentgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	overrides := agentstate.Overrides{Schema: "hs92", Direction: "exports"}
	a := buildSystemPrompt(modeGraphQLSQL, 5, 50, overrides)
	b := buildSystemPrompt(modeGraphQLSQL, 5, 50, overrides)
	require.Equal(t, a, b)
	require.Contains(t, a, "hs92")
	require.Contains(t, a, "exports")
}

func TestBuildSystemPrompt_VariesByMode(t *testing.T) {
	sqlOnly := buildSystemPrompt(modeSQLOnly, 5, 50, agentstate.Overrides{})
	graphqlOnly := buildSystemPrompt(modeGraphQLOnly, 5, 50, agentstate.Overrides{})
	require.NotEqual(t, sqlOnly, graphqlOnly)
	require.Contains(t, sqlOnly, "GraphQL visualization queries are unavailable")
	require.Contains(t, graphqlOnly, "Direct SQL queries are unavailable")
}

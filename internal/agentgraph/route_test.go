package agentgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

func withLastAssistant(calls ...agentstate.ToolCall) *agentstate.State {
	s := agentstate.New("t1")
	s.AppendMessages(agentstate.NewAssistant("", calls...))
	return s
}

func TestRoute_NoToolCallsEnds(t *testing.T) {
	s := agentstate.New("t1")
	s.AppendMessages(agentstate.NewAssistant("final answer"))
	dest, calls := route(s, 5)
	require.Equal(t, destEnd, dest)
	require.Nil(t, calls)
}

func TestRoute_DocsBypassesBudget(t *testing.T) {
	s := withLastAssistant(agentstate.ToolCall{ID: "1", Name: ToolDocs})
	s.QueriesExecuted = 100
	dest, calls := route(s, 1)
	require.Equal(t, destDocs, dest)
	require.Len(t, calls, 1)
}

func TestRoute_MaxQueriesExceeded(t *testing.T) {
	s := withLastAssistant(agentstate.ToolCall{ID: "1", Name: ToolSQL})
	s.QueriesExecuted = 5
	dest, _ := route(s, 5)
	require.Equal(t, destMaxQueriesExceeded, dest)
}

func TestRoute_SQLAndGraphQL(t *testing.T) {
	s := withLastAssistant(agentstate.ToolCall{ID: "1", Name: ToolSQL})
	dest, _ := route(s, 5)
	require.Equal(t, destSQL, dest)

	s2 := withLastAssistant(agentstate.ToolCall{ID: "1", Name: ToolGraphQL})
	dest2, _ := route(s2, 5)
	require.Equal(t, destGraphQL, dest2)
}

func TestRoute_UnknownToolEnds(t *testing.T) {
	s := withLastAssistant(agentstate.ToolCall{ID: "1", Name: "made_up_tool"})
	dest, calls := route(s, 5)
	require.Equal(t, destEnd, dest)
	require.Nil(t, calls)
}

func TestMaxQueriesExceededMessages_OnePerCall(t *testing.T) {
	calls := []agentstate.ToolCall{{ID: "1", Name: ToolSQL}, {ID: "2", Name: ToolSQL}}
	msgs := maxQueriesExceededMessages(calls)
	require.Len(t, msgs, 2)
	for i, m := range msgs {
		require.Equal(t, agentstate.RoleTool, m.Role)
		require.Equal(t, calls[i].ID, m.ToolCallID)
		require.Contains(t, m.Content, "Maximum number of data queries")
	}
}

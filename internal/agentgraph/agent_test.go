package agentgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

func TestToRequestMessages_ToolCallStandIn(t *testing.T) {
	messages := []agentstate.Message{
		agentstate.NewHuman("how much coffee does Brazil export?"),
		agentstate.NewAssistant("", agentstate.ToolCall{ID: "1", Name: ToolSQL}),
		agentstate.NewTool("1", ToolSQL, "42 bags"),
	}
	out := toRequestMessages(messages)
	require.Len(t, out, 3)
	require.Equal(t, "(called query_tool)", out[1].Content)
	require.Equal(t, "1", out[2].ToolCallID)
}

func TestToRequestMessages_PreservesRealContent(t *testing.T) {
	messages := []agentstate.Message{agentstate.NewAssistant("plain text answer")}
	out := toRequestMessages(messages)
	require.Equal(t, "plain text answer", out[0].Content)
}

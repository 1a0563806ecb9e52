package streaming

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

func TestAccumulator_ObserveSkipsFailedQueries(t *testing.T) {
	acc := newAccumulator()

	acc.observe("format_results", agentstate.State{
		SQLQuery:  "SELECT 1",
		SQLResult: agentstate.SQLResult{Columns: []string{"c"}, Rows: [][]any{{1}}},
		LastError: "validation failed",
	})
	require.Empty(t, acc.queries, "a failed query must not be counted toward totals")

	acc.observe("format_results", agentstate.State{
		SQLQuery:           "SELECT * FROM hs92.country_product_year",
		SQLResult:          agentstate.SQLResult{Columns: []string{"c"}, Rows: [][]any{{1}, {2}}},
		SQLExecutionTimeMs: 10,
		SQLProducts:        []agentstate.SQLProduct{{Name: "cars", Schema: "hs92"}},
	})
	require.Len(t, acc.queries, 1)
	require.Equal(t, 2, acc.queries[0].RowCount)
	require.Contains(t, acc.resolvedProducts, "cars")
	require.True(t, acc.schemas["hs92"])
}

func TestAccumulator_ResultAggregatesTotalsAndAnswer(t *testing.T) {
	acc := newAccumulator()
	acc.observe("format_results", agentstate.State{
		SQLQuery:           "SELECT * FROM hs92.x",
		SQLResult:          agentstate.SQLResult{Rows: [][]any{{1}, {2}, {3}}},
		SQLExecutionTimeMs: 7,
	})
	acc.observe("format_results", agentstate.State{
		SQLQuery:           "SELECT * FROM hs92.y",
		SQLResult:          agentstate.SQLResult{Rows: [][]any{{1}}},
		SQLExecutionTimeMs: 3,
	})

	state := &agentstate.State{ThreadID: "t1"}
	state.AppendMessages(
		agentstate.NewHuman("how much did Brazil export?"),
		agentstate.NewAssistant("Brazil exported $1.2B in cars in 2020."),
	)

	result := acc.result(state)
	require.Equal(t, "t1", result.ThreadID)
	require.Equal(t, "Brazil exported $1.2B in cars in 2020.", result.Answer)
	require.Equal(t, 4, result.TotalRows)
	require.Equal(t, int64(10), result.TotalExecutionTimeMs)
	require.Len(t, result.Queries, 2)
}

func TestLastAssistantText_IgnoresToolAndHumanMessages(t *testing.T) {
	messages := []agentstate.Message{
		agentstate.NewHuman("hi"),
		agentstate.NewAssistant("", agentstate.ToolCall{ID: "1", Name: "query_tool"}),
		agentstate.NewTool("1", "query_tool", "42 rows"),
		agentstate.NewAssistant("here is your answer"),
	}
	require.Equal(t, "here is your answer", lastAssistantText(messages))
}

package sqlpipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

func TestExtractToolQuestion(t *testing.T) {
	args, err := json.Marshal(toolArgs{Question: "top exports of Chile", Context: "previous turn asked about Peru"})
	require.NoError(t, err)
	calls := []agentstate.ToolCall{{ID: "call-1", Name: "atlas_sql", Arguments: args}}

	question, toolContext, err := extractToolQuestion(calls)
	require.NoError(t, err)
	assert.Equal(t, "top exports of Chile", question)
	assert.Equal(t, "previous turn asked about Peru", toolContext)
}

func TestExtractToolQuestion_NoCalls(t *testing.T) {
	_, _, err := extractToolQuestion(nil)
	require.Error(t, err)
}

func TestApplyOverrides_SchemaWinsOutright(t *testing.T) {
	extraction := productExtractionResult{
		ClassificationSchemas: []string{"hs92", "sitc"},
		Products: []productMention{
			{Name: "cotton", Schema: "sitc"},
			{Name: "coffee", Schema: "hs92"},
		},
	}
	applyOverrides(&extraction, agentstate.Overrides{Schema: "hs12", Mode: "services"})

	assert.Equal(t, []string{"hs12"}, extraction.ClassificationSchemas)
	assert.Equal(t, "hs12", extraction.Products[0].Schema)
	assert.Equal(t, "hs12", extraction.Products[1].Schema)
}

func TestApplyOverrides_ModeFiltersToGoods(t *testing.T) {
	extraction := productExtractionResult{
		ClassificationSchemas: []string{"hs92", "services_unilateral"},
		Products: []productMention{
			{Name: "cotton", Schema: "hs92"},
			{Name: "tourism", Schema: "services_unilateral"},
		},
	}
	applyOverrides(&extraction, agentstate.Overrides{Mode: "goods"})

	assert.Equal(t, []string{"hs92"}, extraction.ClassificationSchemas)
	assert.Equal(t, "hs92", extraction.Products[0].Schema)
	assert.Equal(t, "hs92", extraction.Products[1].Schema, "a services-tagged product is reassigned to the mode default")
}

func TestApplyOverrides_ModeFallsBackWhenFilterEmpties(t *testing.T) {
	extraction := productExtractionResult{ClassificationSchemas: []string{"services_unilateral"}}
	applyOverrides(&extraction, agentstate.Overrides{Mode: "goods"})
	assert.Equal(t, []string{"hs92"}, extraction.ClassificationSchemas, "documented default when the mode filter would empty the schema list")
}

func TestApplyOverrides_NoOverridesNoop(t *testing.T) {
	extraction := productExtractionResult{ClassificationSchemas: []string{"hs92", "sitc"}}
	applyOverrides(&extraction, agentstate.Overrides{})
	assert.Equal(t, []string{"hs92", "sitc"}, extraction.ClassificationSchemas)
}

func TestMaxQueriesExceededMessages(t *testing.T) {
	calls := []agentstate.ToolCall{{ID: "a", Name: "atlas_sql"}, {ID: "b", Name: "atlas_sql"}}
	msgs := maxQueriesExceededMessages(calls)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, agentstate.RoleTool, m.Role)
		assert.Contains(t, m.Content, "Maximum number")
	}
}

func TestFormatResultMessages_OnlyFirstCallExecuted(t *testing.T) {
	calls := []agentstate.ToolCall{{ID: "a", Name: "atlas_sql"}, {ID: "b", Name: "atlas_sql"}}
	state := &agentstate.State{
		SQLQuery:  "SELECT 1",
		SQLResult: agentstate.SQLResult{Columns: []string{"one"}, Rows: [][]any{{1}}},
	}
	msgs := formatResultMessages(calls, state)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].ToolCallID)
	assert.Contains(t, msgs[0].Content, "SELECT 1")
	assert.Equal(t, "b", msgs[1].ToolCallID)
	assert.Contains(t, msgs[1].Content, "Only one SQL query")
}

func TestFormatResultMessages_ErrorSurfaced(t *testing.T) {
	calls := []agentstate.ToolCall{{ID: "a", Name: "atlas_sql"}}
	state := &agentstate.State{LastError: "relation does not exist"}
	msgs := formatResultMessages(calls, state)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "relation does not exist")
}

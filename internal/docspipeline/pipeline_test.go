package docspipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

func TestPipelineRun_SuccessSetsStateAndDoesNotIncrementBudget(t *testing.T) {
	model := &fakeModel{
		structuredFn: func(req modelclient.Request) (json.RawMessage, error) {
			return json.RawMessage(`{"doc_id":"coverage","reasoning":"asks about years"}`), nil
		},
		invokeFn: func(req modelclient.Request) (modelclient.Response, error) {
			return modelclient.Response{Content: "SITC goes back to 1962."}, nil
		},
	}
	p := New(model, nil)

	state := agentstate.New("thread-1")
	state.QueriesExecuted = 3
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"How far back does the data go?","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	assert.Equal(t, "How far back does the data go?", state.DocsQuestion)
	assert.Equal(t, "SITC goes back to 1962.", state.DocsAnswer)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "SITC goes back to 1962.", state.Messages[0].Content)
	assert.Equal(t, 3, state.QueriesExecuted, "docs questions never count against the per-turn query budget")
}

func TestPipelineRun_SelectionFailureIsUserFacingNotGoError(t *testing.T) {
	model := &fakeModel{
		structuredFn: func(req modelclient.Request) (json.RawMessage, error) {
			return json.RawMessage(`not valid json`), nil
		},
	}
	p := New(model, nil)

	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"anything","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0].Content, "Could not find an answer")
	assert.Empty(t, state.DocsAnswer)
}

func TestPipelineRun_NoCallsIsNoop(t *testing.T) {
	model := &fakeModel{}
	p := New(model, nil)
	state := agentstate.New("thread-1")

	err := p.Run(context.Background(), state, nil)
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
}

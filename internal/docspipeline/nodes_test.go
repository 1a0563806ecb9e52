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

func toolCall(id, args string) agentstate.ToolCall {
	return agentstate.ToolCall{ID: id, Name: "docs_tool", Arguments: json.RawMessage(args)}
}

func TestExtractDocsQuestion_ParsesArgs(t *testing.T) {
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"What is RCA?","context":"prior turn asked about exports"}`)}
	question, toolContext, err := extractDocsQuestion(calls)
	require.NoError(t, err)
	assert.Equal(t, "What is RCA?", question)
	assert.Equal(t, "prior turn asked about exports", toolContext)
}

func TestExtractDocsQuestion_NoCallsIsError(t *testing.T) {
	_, _, err := extractDocsQuestion(nil)
	assert.Error(t, err)
}

func TestExtractDocsQuestion_MalformedArgumentsIsError(t *testing.T) {
	_, _, err := extractDocsQuestion([]agentstate.ToolCall{toolCall("call-1", `not json`)})
	assert.Error(t, err)
}

func TestSelectAndSynthesize_GroundsAnswerInSelectedDoc(t *testing.T) {
	var capturedSystemPrompt string
	model := &fakeModel{
		structuredFn: func(req modelclient.Request) (json.RawMessage, error) {
			return json.RawMessage(`{"doc_id":"rca","reasoning":"question is about RCA"}`), nil
		},
		invokeFn: func(req modelclient.Request) (modelclient.Response, error) {
			capturedSystemPrompt = req.SystemPrompt
			return modelclient.Response{Content: "  RCA measures revealed comparative advantage.  "}, nil
		},
	}
	p := New(model, nil)

	doc, answer, err := p.selectAndSynthesize(context.Background(), "What is RCA?", "")
	require.NoError(t, err)
	assert.Equal(t, "rca", doc.ID)
	assert.Equal(t, "RCA measures revealed comparative advantage.", answer, "answer is trimmed of surrounding whitespace")
	assert.Contains(t, capturedSystemPrompt, doc.Content, "synthesize step is grounded in the selected doc's content")
}

func TestSelectAndSynthesize_UnknownDocIDIsError(t *testing.T) {
	model := &fakeModel{
		structuredFn: func(req modelclient.Request) (json.RawMessage, error) {
			return json.RawMessage(`{"doc_id":"not_a_real_doc","reasoning":"x"}`), nil
		},
	}
	p := New(model, nil)

	_, _, err := p.selectAndSynthesize(context.Background(), "anything", "")
	assert.Error(t, err)
}

func TestDocsResultMessages_OnlyFirstCallGetsRealAnswer(t *testing.T) {
	calls := []agentstate.ToolCall{toolCall("a", "{}"), toolCall("b", "{}")}
	msgs := docsResultMessages(calls, "the answer")
	require.Len(t, msgs, 2)
	assert.Equal(t, "the answer", msgs[0].Content)
	assert.Contains(t, msgs[1].Content, "Only one documentation question")
}

func TestDocsResultMessages_EmptyCallsReturnsNil(t *testing.T) {
	assert.Nil(t, docsResultMessages(nil, "x"))
}

package graphqlpipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/links"
)

func toolCall(id, args string) agentstate.ToolCall {
	return agentstate.ToolCall{ID: id, Name: "query_graphql", Arguments: json.RawMessage(args)}
}

func TestExtractGraphQLQuestion_ResetsFieldsAndParsesArgs(t *testing.T) {
	state := agentstate.New("thread-1")
	state.GraphQLQuestion = "stale question"
	state.GraphQLRawResponse = map[string]any{"stale": true}
	state.GraphQLLinks = []string{"stale-link"}

	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"Who exports coffee?","context":"prior turn discussed Brazil"}`)}
	question, toolContext, err := extractGraphQLQuestion(state, calls)
	require.NoError(t, err)
	assert.Equal(t, "Who exports coffee?", question)
	assert.Equal(t, "prior turn discussed Brazil", toolContext)

	assert.Nil(t, state.GraphQLRawResponse, "stale graphql_raw_response must be cleared on entry")
	assert.Nil(t, state.GraphQLLinks, "stale graphql_links must be cleared on entry")
}

func TestExtractGraphQLQuestion_NoCallsIsError(t *testing.T) {
	state := agentstate.New("thread-1")
	_, _, err := extractGraphQLQuestion(state, nil)
	assert.Error(t, err)
}

func TestExtractGraphQLQuestion_MalformedArgumentsIsError(t *testing.T) {
	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `not json`)}
	_, _, err := extractGraphQLQuestion(state, calls)
	assert.Error(t, err)
}

func TestMaxQueriesExceededMessages(t *testing.T) {
	calls := []agentstate.ToolCall{toolCall("a", "{}"), toolCall("b", "{}")}
	msgs := maxQueriesExceededMessages(calls)
	require.Len(t, msgs, 2)
	for i, m := range msgs {
		assert.Equal(t, agentstate.RoleTool, m.Role)
		assert.Equal(t, calls[i].ID, m.ToolCallID)
		assert.Contains(t, m.Content, "Maximum number of GraphQL queries")
	}
}

func TestOnlyOneQueryStub(t *testing.T) {
	calls := []agentstate.ToolCall{toolCall("a", "{}"), toolCall("b", "{}"), toolCall("c", "{}")}
	msgs := onlyOneQueryStub(calls, "real result")
	require.Len(t, msgs, 3)
	assert.Equal(t, "real result", msgs[0].Content)
	assert.Equal(t, "a", msgs[0].ToolCallID)
	for _, m := range msgs[1:] {
		assert.Contains(t, m.Content, "Only one GraphQL query")
	}
}

func TestOnlyOneQueryStub_EmptyCallsReturnsNil(t *testing.T) {
	assert.Nil(t, onlyOneQueryStub(nil, "x"))
}

func TestLinkURLs(t *testing.T) {
	ls := []links.Link{{URL: "https://a"}, {URL: "https://b"}}
	assert.Equal(t, []string{"https://a", "https://b"}, linkURLs(ls))
}

func TestLinkURLs_Empty(t *testing.T) {
	assert.Empty(t, linkURLs(nil))
}

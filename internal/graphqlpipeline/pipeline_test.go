package graphqlpipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/cachekey"
	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/graphqlclient"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

func newTestCountriesCache(entries ...CountryEntity) *catalog.Cache {
	c := catalog.New("countries", time.Minute)
	c.AddIndex("code", func(e any) string { return e.(CountryEntity).ISO3 }, cachekey.Normalize)
	c.AddIndex("name", func(e any) string { return e.(CountryEntity).Name }, cachekey.Normalize)
	c.AddIndex("id", func(e any) string { return strconv.Itoa(e.(CountryEntity).ID) }, cachekey.Normalize)
	data := make([]any, len(entries))
	for i, e := range entries {
		data[i] = e
	}
	c.Populate(data)
	return c
}

func newTestProductsCache(entries ...ProductEntity) *catalog.Cache {
	c := catalog.New("products", time.Minute)
	c.AddIndex("code", func(e any) string { return e.(ProductEntity).Code }, cachekey.Normalize)
	c.AddIndex("name", func(e any) string { return e.(ProductEntity).Name }, cachekey.Normalize)
	c.AddIndex("id", func(e any) string { return strconv.Itoa(e.(ProductEntity).ID) }, cachekey.Normalize)
	data := make([]any, len(entries))
	for i, e := range entries {
		data[i] = e
	}
	c.Populate(data)
	return c
}

// graphqlServer builds an httptest server returning a fixed GraphQL JSON
// response body for every request, and a graphqlclient.Client pointed at it.
func graphqlServer(t *testing.T, status int, body string) *graphqlclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return graphqlclient.New(srv.URL, nil, nil, nil, 0, time.Millisecond, nil)
}

// structuredModel returns a fakeModel whose InvokeStructured results cycle
// through responses in order, one per call, keyed only by call count (the
// pipeline always calls classify_query before extract_entities, so a simple
// queue is enough to drive both).
func structuredModel(responses ...string) *fakeModel {
	i := 0
	return &fakeModel{
		structuredFn: func(req modelclient.Request) (json.RawMessage, error) {
			r := responses[i]
			if i < len(responses)-1 {
				i++
			}
			return json.RawMessage(r), nil
		},
	}
}

func newTestPipeline(model *fakeModel, countries, products *catalog.Cache, client *graphqlclient.Client) *Pipeline {
	return New(model, countries, products, nil, nil, client, client, nil, 10)
}

func TestPipelineRun_RejectedQuestionShortCircuits(t *testing.T) {
	model := structuredModel(`{"reasoning":"out of scope","query_type":"reject","api_target":"explore","rejection_reason":"asks about weather, not trade"}`)
	client := graphqlServer(t, http.StatusOK, `{"data":{}}`)
	p := newTestPipeline(model, newTestCountriesCache(), newTestProductsCache(), client)

	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"Will it rain in Brazil?","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	assert.Equal(t, string(QueryReject), state.GraphQLClassification)
	assert.Equal(t, "asks about weather, not trade", state.GraphQLRejectionReason)
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0].Content, "asks about weather, not trade")
	assert.Equal(t, 0, state.QueriesExecuted, "a rejected question never counts as an executed query")
}

func TestPipelineRun_ExtractionFailureIsUserFacingNotGoError(t *testing.T) {
	model := structuredModel(
		`{"reasoning":"ok","query_type":"country_profile","api_target":"country_pages"}`,
		`not valid json at all`,
	)
	client := graphqlServer(t, http.StatusOK, `{"data":{}}`)
	p := newTestPipeline(model, newTestCountriesCache(), newTestProductsCache(), client)

	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"Tell me about Brazil","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err, "extraction failures are reported in a tool message, not as a Go error")
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0].Content, "Could not extract")
	assert.Equal(t, 0, state.QueriesExecuted)
}

func TestPipelineRun_UpstreamExecutionFailureDiscardsLinks(t *testing.T) {
	model := structuredModel(
		`{"reasoning":"ok","query_type":"country_profile","api_target":"country_pages"}`,
		`{"country":"Brazil"}`,
	)
	client := graphqlServer(t, http.StatusInternalServerError, `{}`)
	countries := newTestCountriesCache(CountryEntity{ID: 76, Name: "Brazil", ISO3: "BRA"})
	p := newTestPipeline(model, countries, newTestProductsCache(), client)

	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"Tell me about Brazil","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	assert.NotEmpty(t, state.LastError)
	assert.Nil(t, state.GraphQLLinks, "links are discarded when upstream execution fails")
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0].Content, "GraphQL query failed")
	assert.Equal(t, 0, state.QueriesExecuted)
}

func TestPipelineRun_SuccessPostProcessesAndIncrementsCounter(t *testing.T) {
	model := structuredModel(
		`{"reasoning":"ok","query_type":"treemap_products","api_target":"explore"}`,
		`{"country":"Brazil"}`,
	)
	client := graphqlServer(t, http.StatusOK, `{"data":{"countryProductYear":[
		{"productId":1,"exportValue":100},
		{"productId":2,"exportValue":900}
	]}}`)
	countries := newTestCountriesCache(CountryEntity{ID: 76, Name: "Brazil", ISO3: "BRA"})
	products := newTestProductsCache(ProductEntity{ID: 1, Name: "Coffee", Code: "0901"})
	p := newTestPipeline(model, countries, products, client)

	state := agentstate.New("thread-1")
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"What does Brazil export most?","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	assert.Equal(t, 1, state.QueriesExecuted)
	assert.Empty(t, state.LastError)
	require.Len(t, state.Messages, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(state.Messages[0].Content), &payload))
	items := payload["countryProductYear"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(900), first["exportValue"], "post-processing sorts descending before formatting")
}

func TestPipelineRun_MaxQueriesPerTurnReached(t *testing.T) {
	model := structuredModel(`{}`)
	client := graphqlServer(t, http.StatusOK, `{"data":{}}`)
	p := newTestPipeline(model, newTestCountriesCache(), newTestProductsCache(), client)
	p.maxQueriesPerTurn = 1

	state := agentstate.New("thread-1")
	state.QueriesExecuted = 1
	calls := []agentstate.ToolCall{toolCall("call-1", `{"question":"x","context":""}`)}

	err := p.Run(context.Background(), state, calls)
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0].Content, "Maximum number of GraphQL queries")
}

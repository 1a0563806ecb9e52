package agentgraph

import (
	"context"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// fakeModel plays back a scripted sequence of responses, one per Invoke
// call, so tests can drive the agent node deterministically.
type fakeModel struct {
	responses []modelclient.Response
	calls     int
}

func (f *fakeModel) Invoke(ctx context.Context, req modelclient.Request) (modelclient.Response, error) {
	if f.calls >= len(f.responses) {
		return modelclient.Response{}, nil
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}

func (f *fakeModel) InvokeStructured(ctx context.Context, req modelclient.Request, schema *jsonschema.Schema, out any) error {
	return nil
}

// fakePipeline records the calls it was given and appends one stub tool
// message per call id.
type fakePipeline struct {
	invocations int
}

func (p *fakePipeline) Run(ctx context.Context, state *agentstate.State, calls []agentstate.ToolCall) error {
	p.invocations++
	for _, c := range calls {
		state.AppendMessages(agentstate.NewTool(c.ID, c.Name, "stub result"))
	}
	state.IncrementQueriesExecuted()
	return nil
}

func newTestGraph(model modelclient.Client, sql, graphql, docs pipelineRunner, budget budgetChecker) *Graph {
	return New(model, sql, graphql, docs, budget, agentstate.ModeGraphQLSQL, 5, 50, nil)
}

func TestGraph_SingleToolCallThenAnswer(t *testing.T) {
	model := &fakeModel{responses: []modelclient.Response{
		{Content: "", ToolCalls: []modelclient.ToolCall{{ID: "1", Name: ToolSQL, Arguments: map[string]any{"question": "q"}}}},
		{Content: "Here is your answer."},
	}}
	sql := &fakePipeline{}
	g := newTestGraph(model, sql, &fakePipeline{}, &fakePipeline{}, fakeBudget{available: true})

	state := agentstate.New("thread-1")
	err := g.Run(context.Background(), state, "how much coffee does Brazil export?")
	require.NoError(t, err)
	require.Equal(t, 1, sql.invocations)
	require.Equal(t, "Here is your answer.", state.Messages[len(state.Messages)-1].Content)
}

func TestGraph_NoToolCallTriggersNudgeOnce(t *testing.T) {
	model := &fakeModel{responses: []modelclient.Response{
		{Content: "I think I can just answer directly."},
		{Content: "Okay, here's the real answer."},
	}}
	g := newTestGraph(model, &fakePipeline{}, &fakePipeline{}, &fakePipeline{}, fakeBudget{available: true})

	state := agentstate.New("thread-1")
	err := g.Run(context.Background(), state, "what's 2+2?")
	require.NoError(t, err)
	require.True(t, state.NudgeIssued)
	require.Equal(t, 2, model.calls)

	var nudges int
	for _, m := range state.Messages {
		if m.Role == agentstate.RoleHuman && m.Content == nudgeMessage {
			nudges++
		}
	}
	require.Equal(t, 1, nudges, "nudge must be issued at most once per turn")
}

func TestGraph_MaxQueriesExceededTerminatesTheTurn(t *testing.T) {
	model := &fakeModel{responses: []modelclient.Response{
		{ToolCalls: []modelclient.ToolCall{{ID: "1", Name: ToolSQL, Arguments: map[string]any{"question": "q"}}}},
		{Content: "final"},
	}}
	sql := &fakePipeline{}
	g := newTestGraph(model, sql, &fakePipeline{}, &fakePipeline{}, fakeBudget{available: true})
	g.maxToolUses = 0

	state := agentstate.New("thread-1")
	err := g.Run(context.Background(), state, "q")
	require.NoError(t, err)
	require.Equal(t, 0, sql.invocations, "the pipeline itself must never run once the budget is exhausted")

	var sawExceededMessage bool
	for _, m := range state.Messages {
		if m.Role == agentstate.RoleTool && m.Content != "" {
			sawExceededMessage = true
		}
	}
	require.True(t, sawExceededMessage)
}

func TestGraph_DocsToolBypassesExhaustedBudget(t *testing.T) {
	model := &fakeModel{responses: []modelclient.Response{
		{ToolCalls: []modelclient.ToolCall{{ID: "1", Name: ToolDocs, Arguments: map[string]any{"question": "q"}}}},
		{Content: "final"},
	}}
	docs := &fakePipeline{}
	g := newTestGraph(model, &fakePipeline{}, &fakePipeline{}, docs, fakeBudget{available: true})
	g.maxToolUses = 0

	state := agentstate.New("thread-1")
	err := g.Run(context.Background(), state, "how does the complexity index work?")
	require.NoError(t, err)
	require.Equal(t, 1, docs.invocations)
}

func TestGraph_UnknownToolEndsWithoutFabricatingMessage(t *testing.T) {
	// An unknown tool name routes to END without ever having produced a
	// tool message, so the nudge still fires once before the turn
	// actually ends (spec.md §4.8 "Anti-hallucination nudge").
	model := &fakeModel{responses: []modelclient.Response{
		{ToolCalls: []modelclient.ToolCall{{ID: "1", Name: "not_a_real_tool", Arguments: map[string]any{}}}},
		{Content: "final"},
	}}
	g := newTestGraph(model, &fakePipeline{}, &fakePipeline{}, &fakePipeline{}, fakeBudget{available: true})

	state := agentstate.New("thread-1")
	err := g.Run(context.Background(), state, "q")
	require.NoError(t, err)
	require.Equal(t, 2, model.calls)
	for _, m := range state.Messages {
		require.NotEqual(t, agentstate.RoleTool, m.Role, "an unknown tool call must not get a fabricated tool message")
	}
}

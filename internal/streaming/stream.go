package streaming

import (
	"context"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// Stream executes one turn, relaying it as a sequence of typed events
// (spec.md §4.10 "Streaming"). emit is called synchronously from within
// the graph's execution (it may itself write an SSE frame); it must not
// block indefinitely. Ordering guarantees (spec.md §4.10 "Ordering
// guarantees"): thread_id is emitted before graph.Run starts, done after
// it returns, and node_start always immediately precedes the
// pipeline_state it pairs with.
func Stream(ctx context.Context, graph graphRunner, state *agentstate.State, question string, emit func(Event)) error {
	emit(Event{Name: EventThreadID, Data: map[string]string{"thread_id": state.ThreadID}})

	acc := newAccumulator()
	cursor := len(state.Messages)
	var projectErr error

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	observer := func(node string, snap agentstate.State) {
		acc.observe(node, snap)

		payload, err := projectNode(node, snap)
		if err != nil {
			projectErr = err
			cancel()
			return
		}
		emit(Event{Name: EventNodeStart, Data: payload})
		emit(Event{Name: EventPipelineState, Data: payload})

		cursor = emitNewMessages(emit, snap.Messages, cursor)
	}

	runErr := graph.Run(agentstate.WithNodeObserver(ctx, observer), state, question)

	if projectErr != nil {
		return projectErr
	}
	if runErr != nil {
		return runErr
	}

	emitNewMessages(emit, state.Messages, cursor)
	result := acc.result(state)
	emit(Event{Name: EventDone, Data: wrap("graph", "done", result)})
	return nil
}

// emitNewMessages surfaces every message appended since cursor as the
// matching event type, and returns the new cursor.
func emitNewMessages(emit func(Event), messages []agentstate.Message, cursor int) int {
	for _, m := range messages[cursor:] {
		switch m.Role {
		case agentstate.RoleAssistant:
			if len(m.ToolCalls) > 0 {
				for _, c := range m.ToolCalls {
					emit(Event{Name: EventToolCall, Data: wrap("agent", "tool_call", map[string]any{
						"id": c.ID, "name": c.Name, "arguments": string(c.Arguments),
					})})
				}
			} else {
				emit(Event{Name: EventAgentTalk, Data: wrap("agent", "agent_talk", m.Content)})
			}
		case agentstate.RoleTool:
			emit(Event{Name: EventToolOutput, Data: wrap(m.Name, "tool_output", m.Content)})
		}
	}
	return len(messages)
}

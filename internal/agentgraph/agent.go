package agentgraph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// toRequestMessages maps the conversation log to the model's wire shape.
// modelclient.RequestMessage carries no tool_calls field of its own; an
// assistant turn that issued tool calls without other
// content gets a short textual stand-in so the model still sees that a
// call happened, instead of an empty turn indistinguishable from silence.
func toRequestMessages(messages []agentstate.Message) []modelclient.RequestMessage {
	out := make([]modelclient.RequestMessage, 0, len(messages))
	for _, m := range messages {
		content := m.Content
		if m.Role == agentstate.RoleAssistant && content == "" && len(m.ToolCalls) > 0 {
			content = fmt.Sprintf("(called %s)", m.ToolCalls[0].Name)
		}
		out = append(out, modelclient.RequestMessage{
			Role:       string(m.Role),
			Content:    content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		})
	}
	return out
}

// runAgentNode invokes the model bound to the tools allowed under mode and
// appends the resulting assistant message to state (spec.md §4.8 "Agent
// node").
func (g *Graph) runAgentNode(ctx context.Context, state *agentstate.State, mode resolvedMode) error {
	systemPrompt := buildSystemPrompt(mode, g.maxToolUses, g.rowCap, state.Overrides)

	resp, err := g.model.Invoke(ctx, modelclient.Request{
		SystemPrompt: systemPrompt,
		Messages:     toRequestMessages(state.Messages),
		Tools:        toolsForMode(mode),
	})
	if err != nil {
		return fmt.Errorf("agentgraph: agent node model call: %w", err)
	}

	calls := make([]agentstate.ToolCall, 0, len(resp.ToolCalls))
	for _, c := range resp.ToolCalls {
		raw, err := marshalArguments(c.Arguments)
		if err != nil {
			return fmt.Errorf("agentgraph: encode tool call arguments: %w", err)
		}
		calls = append(calls, agentstate.ToolCall{ID: c.ID, Name: c.Name, Arguments: raw})
	}

	state.AppendMessages(agentstate.NewAssistant(resp.Content, calls...))
	agentstate.EmitNode(ctx, "agent", state)
	return nil
}

func marshalArguments(args map[string]any) ([]byte, error) {
	if args == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(args)
}

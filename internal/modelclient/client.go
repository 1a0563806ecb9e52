// Package modelclient defines the boundary between the agent graph and the
// language model. spec.md treats the Model as out of scope at the
// interface (Invoke/InvokeStructured); this package supplies the concrete
// Go contract and an implementation, grounded on the teacher's
// pkg/agent/llm_grpc.go and pkg/llm/client.go shape: a thin client calling
// out to inference running in a separate process.
package modelclient

import (
	"context"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Request carries everything the model needs to produce one completion.
type Request struct {
	SystemPrompt string
	Messages     []RequestMessage
	Tools        []ToolSpec
	Temperature  float64
}

// RequestMessage is the wire shape sent to the sidecar; agentgraph maps
// agentstate.Message to this before calling Invoke/InvokeStructured.
type RequestMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolSpec describes one callable tool the model may invoke.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is a model-requested invocation of one ToolSpec.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Response is the free-form completion result, including any tool calls
// the model requested alongside or instead of text content.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the model-serving boundary. Every call takes a ctx so an
// upstream timeout or cancellation propagates instead of leaking a
// goroutine on a blocked HTTP call.
type Client interface {
	// Invoke returns free-form text, optionally accompanied by requested
	// tool calls (the agent node's normal path).
	Invoke(ctx context.Context, req Request) (Response, error)

	// InvokeStructured asks the model to produce output conforming to
	// schema and unmarshals the validated result into out. Used by
	// pipeline nodes that need a typed result (classification,
	// extraction) rather than free text.
	InvokeStructured(ctx context.Context, req Request, schema *jsonschema.Schema, out any) error
}

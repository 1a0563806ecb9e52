// Package streaming implements the two public surfaces spec.md §4.10
// describes: a non-streaming Run that executes one turn to completion and
// returns an aggregated AnswerResult, and a streaming variant that relays
// the same turn as a sequence of typed SSE-ready events. Both consume the
// agentstate.NodeObserver hook (internal/agentstate/observer.go) rather
// than a bespoke callback, so pipeline-node instrumentation is written
// once and shared by both surfaces.
package streaming

// EventName is one of the sealed SSE event types (spec.md §6 "SSE event
// contract").
type EventName string

const (
	EventThreadID      EventName = "thread_id"
	EventAgentTalk     EventName = "agent_talk"
	EventToolCall      EventName = "tool_call"
	EventToolOutput    EventName = "tool_output"
	EventNodeStart     EventName = "node_start"
	EventPipelineState EventName = "pipeline_state"
	EventDone          EventName = "done"
)

// Event is one item in the stream. Data is already a JSON-marshalable
// value; internal/httpserver encodes it as the SSE `data:` line.
type Event struct {
	Name EventName
	Data any
}

// envelope wraps agent_talk/tool_call/tool_output/done payloads (spec.md
// §4.10: "for the other event types the payload is wrapped with
// {source, content, messageType}"). node_start and pipeline_state are
// surfaced verbatim and never wrapped.
type envelope struct {
	Source      string `json:"source"`
	Content     any    `json:"content"`
	MessageType string `json:"messageType"`
}

func wrap(source, messageType string, content any) envelope {
	return envelope{Source: source, Content: content, MessageType: messageType}
}

package httpserver

// ChatRequest is the HTTP request body for POST /chat and POST
// /chat/stream (spec.md §6).
type ChatRequest struct {
	Question          string `json:"question"`
	ThreadID          string `json:"thread_id,omitempty"`
	OverrideSchema    string `json:"override_schema,omitempty"`
	OverrideDirection string `json:"override_direction,omitempty"`
	OverrideMode      string `json:"override_mode,omitempty"`

	// OverrideAgentMode pins AgentGraph's mode resolution for this
	// conversation (spec.md §4.8 "Mode resolution"), bypassing the
	// AUTO/budget fallback. Not named by spec.md §6's request shape; a
	// supplemented field since the mode-resolution machinery it drives
	// already exists and is otherwise unreachable from the HTTP surface.
	OverrideAgentMode string `json:"override_agent_mode,omitempty"`
}

package httpserver

// ErrorResponse is the structured error body returned for 4xx/5xx
// responses (teacher pkg/api/responses.go shape, generalized with an
// optional Field for validation errors — spec.md §6 "Invalid enum values
// on overrides produce HTTP 422 with a structured error").
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ThreadResponse is returned by POST /threads.
type ThreadResponse struct {
	ThreadID string `json:"thread_id"`
}

// ConversationResponse is one element of the GET /threads array (spec.md
// §6 "[{thread_id, title, created_at, updated_at}]").
type ConversationResponse struct {
	ThreadID  string `json:"thread_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// MessageView is one entry in GET /threads/{id}/messages' messages array
// (spec.md §6 "{messages:[{role:\"human\"|\"ai\", content}], ...}").
type MessageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse is the full body for GET /threads/{id}/messages.
type MessagesResponse struct {
	Messages      []MessageView `json:"messages"`
	Overrides     overridesView `json:"overrides"`
	TurnSummaries []any         `json:"turn_summaries"`
}

type overridesView struct {
	Schema    string `json:"schema,omitempty"`
	Direction string `json:"direction,omitempty"`
	Mode      string `json:"mode,omitempty"`
	AgentMode string `json:"agent_mode,omitempty"`
}

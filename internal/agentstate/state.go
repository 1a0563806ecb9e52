package agentstate

// AgentMode selects which tools are bound to the agent node.
type AgentMode string

const (
	ModeAuto        AgentMode = "auto"
	ModeSQLOnly     AgentMode = "sql_only"
	ModeGraphQLSQL  AgentMode = "graphql_sql"
	ModeGraphQLOnly AgentMode = "graphql_only"
)

// TurnSummary is one accumulated per-turn structured summary (queries run,
// entities resolved, presentation links), added to State.TurnSummaries only
// through AppendTurnSummaries. No part of the turn loop calls it, so a turn
// adds no summary on its own. Never removed, never reordered.
type TurnSummary struct {
	ToolName        string            `json:"tool_name"`
	QueriesExecuted int               `json:"queries_executed"`
	Entities        map[string]string `json:"entities,omitempty"`
	Links           []string          `json:"links,omitempty"`
	ExecutionTimeMs int64             `json:"execution_time_ms"`
	Error           string            `json:"error,omitempty"`
}

// SQLProduct is one product/schema candidate extracted from the question.
type SQLProduct struct {
	Name   string   `json:"name"`
	Schema string   `json:"schema"`
	Codes  []string `json:"codes"`
}

// SQLResult is the structured shape of an executed query's output.
type SQLResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]any    `json:"rows"`
}

// Overrides carries user-supplied, conversation-lifetime overrides.
type Overrides struct {
	Schema    string `json:"schema,omitempty"`    // hs92, hs12, sitc
	Direction string `json:"direction,omitempty"` // exports, imports
	Mode      string `json:"mode,omitempty"`      // goods, services
	AgentMode string `json:"agent_mode,omitempty"`
}

// State is the single object flowing through every agent-graph and pipeline
// node (spec.md §3 AgentState). Append-only semantics for Messages and
// TurnSummaries are enforced by AppendMessages/AppendTurnSummaries, not by a
// generic reducer — Go has no decorator-based field-reducer mechanism, so the
// append discipline is an explicit method instead (Design Note: tagged
// variants / explicit transitions over dynamic graph machinery).
//
// The AgentGraph exclusively owns a State value during a step (spec.md §3
// Ownership); no additional locking is taken here. The checkpoint store
// serializes concurrent access across steps for the same thread instead
// (internal/checkpoint).
type State struct {
	ThreadID  string    `json:"thread_id"`
	SessionID string    `json:"session_id,omitempty"`
	Messages  []Message `json:"messages"`

	QueriesExecuted int    `json:"queries_executed"`
	LastError       string `json:"last_error"`

	// NudgeIssued guards the once-per-turn anti-hallucination nudge
	// (spec.md §4.8). Reset at the top of every turn.
	NudgeIssued bool `json:"nudge_issued"`

	// SQL pipeline fields (per tool invocation).
	SQLQuestion        string       `json:"sql_question"`
	SQLContext         string       `json:"sql_context"`
	SQLProducts        []SQLProduct `json:"sql_products"`
	SQLResolvedCodes   []string     `json:"sql_resolved_codes"`
	SQLTableInfo       string       `json:"sql_table_info"`
	SQLQuery           string       `json:"sql_query"`
	SQLResult          SQLResult    `json:"sql_result"`
	SQLExecutionTimeMs int64        `json:"sql_execution_time_ms"`

	// GraphQL pipeline fields (reset to zero value at extract_graphql_question).
	GraphQLQuestion        string            `json:"graphql_question"`
	GraphQLContext         string            `json:"graphql_context"`
	GraphQLClassification  string            `json:"graphql_classification"`
	GraphQLRejectionReason string            `json:"graphql_rejection_reason"`
	GraphQLAPITarget       string            `json:"graphql_api_target"`
	GraphQLExtraction      map[string]any    `json:"graphql_extraction"`
	GraphQLResolvedParams  map[string]any    `json:"graphql_resolved_params"`
	GraphQLResolutionNotes []string          `json:"graphql_resolution_notes"`
	GraphQLQuery           string            `json:"graphql_query"`
	GraphQLVariables       map[string]any    `json:"graphql_variables"`
	GraphQLRawResponse     map[string]any    `json:"graphql_raw_response"`
	GraphQLExecutionTimeMs int64             `json:"graphql_execution_time_ms"`
	GraphQLLinks           []string          `json:"graphql_links"`

	// Docs pipeline fields (per tool invocation).
	DocsQuestion string `json:"docs_question"`
	DocsAnswer   string `json:"docs_answer"`

	Overrides Overrides `json:"overrides"`

	TurnSummaries []TurnSummary `json:"turn_summaries"`
}

// New constructs an empty state for a fresh thread.
func New(threadID string) *State {
	return &State{ThreadID: threadID}
}

// AppendMessages appends messages to the log; it takes no lock (see the
// ownership note on State). This is the only
// sanctioned mutation path for Messages, mirroring LangGraph's add_messages
// reducer (original_source src/state.py) as an explicit method rather than a
// field annotation.
func (s *State) AppendMessages(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// AppendTurnSummaries appends summaries, mirroring add_turn_summaries
// (original_source src/state.py).
func (s *State) AppendTurnSummaries(summaries ...TurnSummary) {
	s.TurnSummaries = append(s.TurnSummaries, summaries...)
}

// StartTurn resets per-turn fields. Called once when a new user message
// enters the graph.
func (s *State) StartTurn() {
	s.QueriesExecuted = 0
	s.NudgeIssued = false
	s.LastError = ""
}

// ResetGraphQLFields resets every graphql_* field to its default value. Must
// be called at extract_graphql_question entry to prevent cross-turn bleed
// (spec.md §4.6 node 1, testable property "State reset").
func (s *State) ResetGraphQLFields() {
	s.GraphQLQuestion = ""
	s.GraphQLContext = ""
	s.GraphQLClassification = ""
	s.GraphQLRejectionReason = ""
	s.GraphQLAPITarget = ""
	s.GraphQLExtraction = nil
	s.GraphQLResolvedParams = nil
	s.GraphQLResolutionNotes = nil
	s.GraphQLQuery = ""
	s.GraphQLVariables = nil
	s.GraphQLRawResponse = nil
	s.GraphQLExecutionTimeMs = 0
	s.GraphQLLinks = nil
	s.LastError = ""
}

// ResetSQLFields resets every sql_* field to its default.
func (s *State) ResetSQLFields() {
	s.SQLQuestion = ""
	s.SQLContext = ""
	s.SQLProducts = nil
	s.SQLResolvedCodes = nil
	s.SQLTableInfo = ""
	s.SQLQuery = ""
	s.SQLResult = SQLResult{}
	s.SQLExecutionTimeMs = 0
	s.LastError = ""
}

// IncrementQueriesExecuted bumps the per-turn tool-execution counter.
func (s *State) IncrementQueriesExecuted() {
	s.QueriesExecuted++
}

// Snapshot returns a shallow copy of the state for checkpointing / streaming
// projection. Messages and TurnSummaries slices are copied to avoid aliasing
// with in-flight mutation.
func (s *State) Snapshot() State {
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	cp.TurnSummaries = append([]TurnSummary(nil), s.TurnSummaries...)
	return cp
}

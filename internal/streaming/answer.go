package streaming

import (
	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/sqlpipeline"
)

// QueryResult is one executed SQL query's contribution to the /chat
// response (spec.md §6 "queries?:[{sql, columns, rows, row_count,
// execution_time_ms, tables}]").
type QueryResult struct {
	SQL             string   `json:"sql"`
	Columns         []string `json:"columns"`
	Rows            [][]any  `json:"rows"`
	RowCount        int      `json:"row_count"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	Tables          []string `json:"tables"`
}

// AnswerResult is the non-streaming /chat response body (spec.md §6).
type AnswerResult struct {
	Answer               string        `json:"answer"`
	ThreadID             string        `json:"thread_id"`
	Queries              []QueryResult `json:"queries,omitempty"`
	ResolvedProducts     []string      `json:"resolved_products,omitempty"`
	SchemasUsed          []string      `json:"schemas_used,omitempty"`
	TotalRows            int           `json:"total_rows,omitempty"`
	TotalExecutionTimeMs int64         `json:"total_execution_time_ms,omitempty"`
}

// accumulator aggregates per-turn query detail as pipeline nodes complete,
// shared by Run (silent accumulation) and Stream (accumulation alongside
// emission). It watches exactly one terminal per-tool-invocation node
// that carries a completed query's full detail: format_results (SQL), only
// on success, since a failed query has nothing worth reporting back as
// structured data (its failure already reached the model as a tool
// message).
type accumulator struct {
	queries          []QueryResult
	resolvedProducts []string
	schemas          map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{schemas: make(map[string]bool)}
}

func (a *accumulator) observe(node string, snap agentstate.State) {
	switch node {
	case "format_results":
		if snap.LastError != "" {
			return
		}
		a.queries = append(a.queries, QueryResult{
			SQL:             snap.SQLQuery,
			Columns:         snap.SQLResult.Columns,
			Rows:            snap.SQLResult.Rows,
			RowCount:        len(snap.SQLResult.Rows),
			ExecutionTimeMs: snap.SQLExecutionTimeMs,
			Tables:          sqlpipeline.ReferencedTables(snap.SQLQuery),
		})
		for _, p := range snap.SQLProducts {
			a.resolvedProducts = append(a.resolvedProducts, p.Name)
			if p.Schema != "" {
				a.schemas[p.Schema] = true
			}
		}
	}
}

// result builds the final AnswerResult, pulling the answer text from the
// last assistant message and threadID/aggregate stats from the
// accumulated queries.
func (a *accumulator) result(state *agentstate.State) AnswerResult {
	answer := lastAssistantText(state.Messages)

	var totalRows int
	var totalMs int64
	for _, q := range a.queries {
		totalRows += q.RowCount
		totalMs += q.ExecutionTimeMs
	}

	var schemas []string
	for s := range a.schemas {
		schemas = append(schemas, s)
	}

	return AnswerResult{
		Answer:               answer,
		ThreadID:             state.ThreadID,
		Queries:              a.queries,
		ResolvedProducts:     a.resolvedProducts,
		SchemasUsed:          schemas,
		TotalRows:            totalRows,
		TotalExecutionTimeMs: totalMs,
	}
}

func lastAssistantText(messages []agentstate.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == agentstate.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

package sqlpipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// Pipeline wires the eight SQL pipeline nodes (spec.md §4.5) into the linear
// sequence extract_tool_question → extract_products → lookup_codes →
// get_table_info → generate_sql → validate_sql → execute_sql →
// format_results. Grounded on original_source/src/sql_pipeline.py's
// build_sql_subgraph, adapted from a dynamic graph builder to an explicit
// method call sequence (spec.md REDESIGN FLAGS "dynamic dispatch → tagged
// variants / explicit transitions").
type Pipeline struct {
	model     modelclient.Client
	codes     *codeLookup
	tableInfo *tableInfoCache
	executor  *Executor
	logger    *slog.Logger

	topK              int
	maxQueriesPerTurn int
}

// New builds a Pipeline bound to a read-only connection pool and a Model
// client.
func New(model modelclient.Client, pool *pgxpool.Pool, logger *slog.Logger, maxExecRetries int, backoffBase time.Duration, topK, maxQueriesPerTurn int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		model:             model,
		codes:             newCodeLookup(pool, logger),
		tableInfo:         newTableInfoCache(pool),
		executor:          NewExecutor(pool, maxExecRetries, backoffBase, logger),
		logger:            logger,
		topK:              topK,
		maxQueriesPerTurn: maxQueriesPerTurn,
	}
}

// Run executes the pipeline against the tool calls the agent node routed to
// the SQL tool this turn, appending one tool-result message per call id to
// state (spec.md §4.5 node 8, "Failure semantics").
func (p *Pipeline) Run(ctx context.Context, state *agentstate.State, calls []agentstate.ToolCall) error {
	if len(calls) == 0 {
		return nil
	}

	if state.QueriesExecuted >= p.maxQueriesPerTurn {
		state.AppendMessages(maxQueriesExceededMessages(calls)...)
		return nil
	}

	state.ResetSQLFields()

	question, toolContext, err := extractToolQuestion(calls)
	if err != nil {
		return err
	}
	state.SQLQuestion = question
	state.SQLContext = toolContext
	agentstate.EmitNode(ctx, "extract_tool_question", state)

	extraction, err := p.extractProducts(ctx, question, toolContext, state.Overrides)
	if err != nil {
		return err
	}
	schemas := extraction.ClassificationSchemas
	if len(schemas) == 0 {
		schemas = []string{"hs92"}
	}
	state.SQLProducts = toSQLProducts(extraction.Products)
	agentstate.EmitNode(ctx, "extract_products", state)

	var codesForPrompt string
	if extraction.RequiresLookup && len(extraction.Products) > 0 {
		selection, err := p.lookupCodes(ctx, extraction.Products)
		if err != nil {
			return err
		}
		state.SQLProducts = toSQLProducts(selection.Mappings)
		state.SQLResolvedCodes = flattenCodes(selection.Mappings)
		codesForPrompt = formatCodesForPrompt(selection.Mappings)
	}
	agentstate.EmitNode(ctx, "lookup_codes", state)

	tableInfo, err := p.tableInfo.get(ctx, schemas)
	if err != nil {
		return fmt.Errorf("sqlpipeline: get_table_info: %w", err)
	}
	state.SQLTableInfo = tableInfo
	agentstate.EmitNode(ctx, "get_table_info", state)

	topK := p.topK
	if topK <= 0 {
		topK = defaultTopK
	}
	sql, err := generateSQL(ctx, p.model, tableInfo, codesForPrompt, topK, state.Overrides.Direction, state.Overrides.Mode, question, toolContext)
	if err != nil {
		return err
	}
	state.SQLQuery = sql
	agentstate.EmitNode(ctx, "generate_sql", state)

	validTables := ValidTablesForSchemas(schemas)
	for t := range ExtractTableNamesFromDDL(tableInfo) {
		validTables[t] = true
	}
	validation := ValidateSQL(sql, validTables)
	if !validation.IsValid {
		p.logger.Warn("sqlpipeline: validate_sql rejected query", "errors", validation.Errors)
		state.LastError = strings.Join(validation.Errors, "; ")
		agentstate.EmitNode(ctx, "validate_sql", state)
		state.AppendMessages(formatResultMessages(calls, state)...)
		agentstate.EmitNode(ctx, "format_results", state)
		return nil
	}
	for _, w := range validation.Warnings {
		p.logger.Warn("sqlpipeline: validate_sql warning", "warning", w)
	}
	agentstate.EmitNode(ctx, "validate_sql", state)

	execResult := p.executor.Execute(ctx, sql)
	state.SQLExecutionTimeMs = execResult.ExecutionTimeMs
	if execResult.Err != nil {
		state.LastError = execResult.Err.Error()
	} else {
		state.LastError = ""
		state.SQLResult = execResult.Result
	}
	agentstate.EmitNode(ctx, "execute_sql", state)

	state.AppendMessages(formatResultMessages(calls, state)...)
	state.IncrementQueriesExecuted()
	agentstate.EmitNode(ctx, "format_results", state)
	return nil
}

func toSQLProducts(mentions []productMention) []agentstate.SQLProduct {
	out := make([]agentstate.SQLProduct, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, agentstate.SQLProduct{Name: m.Name, Schema: m.Schema, Codes: m.Codes})
	}
	return out
}

func flattenCodes(mentions []productMention) []string {
	var out []string
	for _, m := range mentions {
		out = append(out, m.Codes...)
	}
	return out
}

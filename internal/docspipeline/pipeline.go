package docspipeline

import (
	"context"
	"log/slog"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// Pipeline wires the three docs pipeline nodes (spec.md §4.7) into the
// linear sequence extract_docs_question → select_and_synthesize →
// format_docs_result. Unlike sqlpipeline and graphqlpipeline, docs
// questions never count against the per-turn query budget (spec.md §4.7
// "This pipeline does not count against the per-turn query budget"), so
// Run never calls state.IncrementQueriesExecuted.
type Pipeline struct {
	model  modelclient.Client
	logger *slog.Logger
}

// New builds a Pipeline.
func New(model modelclient.Client, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{model: model, logger: logger}
}

// Run executes the pipeline against the tool calls the agent node routed to
// the docs tool this turn.
func (p *Pipeline) Run(ctx context.Context, state *agentstate.State, calls []agentstate.ToolCall) error {
	if len(calls) == 0 {
		return nil
	}

	question, toolContext, err := extractDocsQuestion(calls)
	if err != nil {
		return err
	}
	state.DocsQuestion = question
	agentstate.EmitNode(ctx, "extract_docs_question", state)

	_, answer, err := p.selectAndSynthesize(ctx, question, toolContext)
	if err != nil {
		p.logger.Warn("docspipeline: select_and_synthesize failed", "err", err)
		agentstate.EmitNode(ctx, "select_and_synthesize", state)
		state.AppendMessages(docsResultMessages(calls, "Could not find an answer in the available documentation: "+err.Error())...)
		agentstate.EmitNode(ctx, "format_docs_result", state)
		return nil
	}

	state.DocsAnswer = answer
	agentstate.EmitNode(ctx, "select_and_synthesize", state)
	state.AppendMessages(docsResultMessages(calls, answer)...)
	agentstate.EmitNode(ctx, "format_docs_result", state)
	return nil
}

package streaming

import (
	"context"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// graphRunner is the one method internal/agentgraph.Graph exposes that
// streaming needs. Declared locally so tests can drive Run/Stream with a
// fake graph instead of a fully wired model + pipelines.
type graphRunner interface {
	Run(ctx context.Context, state *agentstate.State, question string) error
}

// Run executes one turn to completion and returns the aggregated answer
// (spec.md §4.10 "Non-streaming"). state is mutated in place by the graph;
// callers persist it via internal/checkpoint afterward.
func Run(ctx context.Context, graph graphRunner, state *agentstate.State, question string) (AnswerResult, error) {
	acc := newAccumulator()
	ctx = agentstate.WithNodeObserver(ctx, acc.observe)

	if err := graph.Run(ctx, state, question); err != nil {
		return AnswerResult{}, err
	}
	return acc.result(state), nil
}

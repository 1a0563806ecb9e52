package httpserver

import (
	"context"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// acceptingGraph is a graphRunner test double that appends a canned
// assistant reply and never errors, mirroring internal/streaming's own
// fakeGraph (streaming/run_test.go) so handler tests don't need a model,
// database, or catalogs.
type acceptingGraph struct {
	reply string
	err   error
}

func (g *acceptingGraph) Run(ctx context.Context, state *agentstate.State, question string) error {
	if g.err != nil {
		return g.err
	}
	state.AppendMessages(agentstate.NewHuman(question))
	reply := g.reply
	if reply == "" {
		reply = "the answer is 42"
	}
	state.AppendMessages(agentstate.NewAssistant(reply))
	return nil
}

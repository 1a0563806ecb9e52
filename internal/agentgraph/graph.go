// Package agentgraph composes the agent node with the three backend
// pipelines via conditional routing (spec.md §4.8 AgentGraph), following
// Design Note "Graph as a state machine → explicit nodes + transition
// table": the node set and its transitions are a fixed Go switch, not a
// dynamically assembled graph object (original_source's
// src/agent_graph.py builds a LangGraph StateGraph at runtime; there is no
// idiomatic Go analogue to a graph-builder library, so the structure is
// inlined as an explicit loop instead — see DESIGN.md).
package agentgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// pipelineRunner is the shape all three backend pipelines share (locked in
// by their own test suites as the 3-argument Run(ctx, state, calls)
// signature). Declaring it here, rather than depending on the concrete
// sqlpipeline.Pipeline/graphqlpipeline.Pipeline/docspipeline.Pipeline
// types, lets graph_test.go exercise routing and the iteration loop
// against fakes without a database, HTTP sidecar, or catalog.
type pipelineRunner interface {
	Run(ctx context.Context, state *agentstate.State, calls []agentstate.ToolCall) error
}

// maxGraphIterations bounds the number of agent-node invocations within a
// single turn. Not part of the spec's routing table; a docs_tool loop
// bypasses the query budget entirely (spec.md §4.8), so without a ceiling
// a misbehaving model could iterate forever. Chosen generously above any
// realistic multi-hop question.
const maxGraphIterations = 25

// Graph is the composed state machine: one agent node plus the three
// pipeline root nodes, wired by route (spec.md §4.8).
type Graph struct {
	model modelclient.Client

	sql     pipelineRunner
	graphql pipelineRunner
	docs    pipelineRunner

	budget      budgetChecker
	defaultMode agentstate.AgentMode

	maxToolUses int
	rowCap      int

	logger *slog.Logger
}

// New builds a Graph. budget is consulted only to resolve AUTO mode;
// per-pipeline budget enforcement still happens inside the SQL and GraphQL
// pipelines' own Run (maxQueriesPerTurn), matching the redundancy already
// present there — the graph's own maxQueriesExceeded routing and those
// pipelines' internal guards independently agree once maxToolUses is
// threaded to both. The docs pipeline has no such guard.
func New(model modelclient.Client, sql, graphql, docs pipelineRunner, budget budgetChecker, defaultMode agentstate.AgentMode, maxToolUses, rowCap int, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		model:       model,
		sql:         sql,
		graphql:     graphql,
		docs:        docs,
		budget:      budget,
		defaultMode: defaultMode,
		maxToolUses: maxToolUses,
		rowCap:      rowCap,
		logger:      logger,
	}
}

// Run executes one full turn: appends question as a human message, then
// iterates agent ⇄ pipeline until the agent proposes no further tool call
// (spec.md §2 "Data flow"). state is mutated in place; the caller
// (internal/streaming) is responsible for persisting it afterward.
func (g *Graph) Run(ctx context.Context, state *agentstate.State, question string) error {
	state.StartTurn()
	state.AppendMessages(agentstate.NewHuman(question))

	mode := resolveMode(g.defaultMode, state.Overrides.AgentMode, state.SessionID, g.budget)
	toolInvoked := false

	for i := 0; i < maxGraphIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := g.runAgentNode(ctx, state, mode); err != nil {
			return err
		}

		dest, calls := route(state, g.maxToolUses)
		switch dest {
		case destEnd:
			if !toolInvoked && !state.NudgeIssued {
				state.NudgeIssued = true
				state.AppendMessages(agentstate.NewHuman(nudgeMessage))
				continue
			}
			return nil

		case destMaxQueriesExceeded:
			state.AppendMessages(maxQueriesExceededMessages(calls)...)
			agentstate.EmitNode(ctx, "max_queries_exceeded", state)
			toolInvoked = true
			continue

		case destDocs:
			if err := g.docs.Run(ctx, state, calls); err != nil {
				return fmt.Errorf("agentgraph: docs pipeline: %w", err)
			}
			toolInvoked = true
			continue

		case destSQL:
			if err := g.sql.Run(ctx, state, calls); err != nil {
				return fmt.Errorf("agentgraph: sql pipeline: %w", err)
			}
			toolInvoked = true
			continue

		case destGraphQL:
			if err := g.graphql.Run(ctx, state, calls); err != nil {
				return fmt.Errorf("agentgraph: graphql pipeline: %w", err)
			}
			toolInvoked = true
			continue
		}
	}

	g.logger.Warn("agentgraph: turn hit the iteration ceiling without ending", "thread_id", state.ThreadID, "iterations", maxGraphIterations)
	return fmt.Errorf("agentgraph: exceeded %d iterations without reaching END", maxGraphIterations)
}

package agentstate

import "context"

// NodeObserver receives one notification per pipeline node that completes,
// in node order, carrying a snapshot of state as of that moment. Used by
// internal/streaming to project node_start/pipeline_state SSE events
// without threading a stream-specific type through sqlpipeline,
// graphqlpipeline, and docspipeline (spec.md §4.10 "Pipeline-state
// extraction"; Design Note "Streaming + state extraction → event
// projection layer").
//
// Since every pipeline node here is a synchronous, non-yielding Go call
// rather than an async generator step, node_start and pipeline_state are
// reported together at node completion instead of as two independently
// timed events: EmitNode's caller (internal/streaming) synthesizes
// node_start immediately before forwarding the same call as pipeline_state,
// which trivially satisfies the ordering guarantee that node_start for node
// N precedes any pipeline_state produced by N.
type NodeObserver func(node string, snapshot State)

type nodeObserverKey struct{}

// WithNodeObserver attaches fn to ctx for the duration of one graph step.
// A nil fn (or an untouched ctx) makes EmitNode a no-op, which is the
// common case for non-streaming /chat requests.
func WithNodeObserver(ctx context.Context, fn NodeObserver) context.Context {
	return context.WithValue(ctx, nodeObserverKey{}, fn)
}

// EmitNode notifies the observer attached to ctx, if any, that node has
// just completed.
func EmitNode(ctx context.Context, node string, s *State) {
	fn, _ := ctx.Value(nodeObserverKey{}).(NodeObserver)
	if fn == nil {
		return
	}
	fn(node, s.Snapshot())
}

package docspipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// toolArgs is the shape the docs_tool call carries.
type toolArgs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// extractDocsQuestion lifts question/context from the first tool call
// (spec.md §4.7 node 1); any remaining calls are answered by the terminal
// stub in format_docs_result, not here.
func extractDocsQuestion(calls []agentstate.ToolCall) (question, toolContext string, err error) {
	if len(calls) == 0 {
		return "", "", fmt.Errorf("docspipeline: no tool calls to process")
	}
	var args toolArgs
	if err := json.Unmarshal(calls[0].Arguments, &args); err != nil {
		return "", "", fmt.Errorf("docspipeline: parse tool call arguments: %w", err)
	}
	return args.Question, args.Context, nil
}

// selectAndSynthesize asks the Model to choose the manifest document best
// suited to question, then asks it again, grounded in only that document's
// content, to produce the answer text (spec.md §4.7 node 2).
func (p *Pipeline) selectAndSynthesize(ctx context.Context, question, toolContext string) (DocEntry, string, error) {
	var sel selectionResult
	selectPrompt := fmt.Sprintf("Choose the single document that best answers this question about Atlas Router.\nQuestion: %s\nContext: %s", question, toolContext)
	if err := p.model.InvokeStructured(ctx, modelclient.Request{
		SystemPrompt: "You select the one reference document most relevant to a user's question about a trade-data query router.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: selectPrompt}},
	}, selectionSchema, &sel); err != nil {
		return DocEntry{}, "", fmt.Errorf("docspipeline: select_doc model call: %w", err)
	}

	doc, ok := docByID[sel.DocID]
	if !ok {
		return DocEntry{}, "", fmt.Errorf("docspipeline: model selected unknown doc_id %q", sel.DocID)
	}

	synthesizePrompt := fmt.Sprintf("Question: %s\nContext: %s", question, toolContext)
	resp, err := p.model.Invoke(ctx, modelclient.Request{
		SystemPrompt: fmt.Sprintf("Answer the question using only the following document. Do not invent facts beyond it.\n\n%s: %s\n\n%s", doc.Title, doc.ID, doc.Content),
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: synthesizePrompt}},
	})
	if err != nil {
		return DocEntry{}, "", fmt.Errorf("docspipeline: synthesize model call: %w", err)
	}

	return doc, strings.TrimSpace(resp.Content), nil
}

// docsResultMessages answers the first tool call with answer; any further
// calls in the same turn get a stub, mirroring sqlpipeline/graphqlpipeline's
// one-query-per-call discipline.
func docsResultMessages(calls []agentstate.ToolCall, answer string) []agentstate.Message {
	if len(calls) == 0 {
		return nil
	}
	msgs := []agentstate.Message{agentstate.NewTool(calls[0].ID, calls[0].Name, answer)}
	for _, c := range calls[1:] {
		msgs = append(msgs, agentstate.NewTool(c.ID, c.Name, "Only one documentation question can be answered per tool call; this request was ignored."))
	}
	return msgs
}

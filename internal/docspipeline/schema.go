package docspipeline

import (
	"encoding/json"

	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// selectionResult is the unmarshal target for selectionSchema: the Model's
// choice of which manifest document best answers the question.
type selectionResult struct {
	DocID     string `json:"doc_id"`
	Reasoning string `json:"reasoning"`
}

func buildSelectionSchemaDoc() []byte {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"doc_id", "reasoning"},
		"properties": map[string]any{
			"doc_id":    map[string]any{"type": "string", "enum": docIDs()},
			"reasoning": map[string]any{"type": "string"},
		},
	}
	doc, err := json.Marshal(schema)
	if err != nil {
		panic("docspipeline: marshal selection schema: " + err.Error())
	}
	return doc
}

var selectionSchema = modelclient.MustCompileSchema("docspipeline_selection.json", buildSelectionSchemaDoc())

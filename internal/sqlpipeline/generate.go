package sqlpipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shreyasgm/atlas-router/internal/modelclient"
)

// defaultTopK bounds generated queries' row count absent a caller-supplied
// override, mirroring original_source generate_query.py DEFAULT_TOP_K.
const defaultTopK = 50

// codeFenceRe strips a leading/trailing ```sql or ``` fence, mirroring
// original_source generate_query.py's strip_code_fences.
var codeFenceRe = regexp.MustCompile("(?is)^```(?:sql)?\\s*(.*?)\\s*```$")

func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// buildGenerationPrompt assembles the few-shot SQL generation prompt:
// table DDL, resolved product codes, the row cap, any active direction/mode
// constraints, the few-shot example library, and the free-text question
// plus tool-call context. Mirrors original_source generate_query.py's
// create_query_generation_chain / build_sql_generation_prefix.
func buildGenerationPrompt(tableInfo, codes string, topK int, direction, mode, question, toolContext string) string {
	var b strings.Builder
	b.WriteString("You are a PostgreSQL expert. Given the table schema below, write a syntactically correct PostgreSQL query that answers the question.\n\n")
	b.WriteString("Schema:\n")
	b.WriteString(tableInfo)
	b.WriteString("\n")
	if codes != "" {
		b.WriteString("Resolved product codes:\n")
		b.WriteString(codes)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Unless the question specifies otherwise, limit results to at most %d rows using LIMIT.\n", topK)
	if direction != "" {
		fmt.Fprintf(&b, "Constrain the query to %s only.\n", direction)
	}
	if mode != "" {
		fmt.Fprintf(&b, "Constrain the query to %s trade only.\n", mode)
	}
	b.WriteString("\nExamples:\n")
	for _, ex := range exampleQueries {
		fmt.Fprintf(&b, "Question: %s\nSQL: %s\n\n", ex.Question, ex.Query)
	}
	b.WriteString("Now answer this question. Return only the SQL query, no explanation.\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	if toolContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", toolContext)
	}
	return b.String()
}

// generateSQL invokes the Model with the few-shot prompt and returns the
// stripped SQL string (spec.md §4.5 node 5).
func generateSQL(ctx context.Context, model modelclient.Client, tableInfo, codes string, topK int, direction, mode, question, toolContext string) (string, error) {
	prompt := buildGenerationPrompt(tableInfo, codes, topK, direction, mode, question, toolContext)
	resp, err := model.Invoke(ctx, modelclient.Request{
		SystemPrompt: "You write PostgreSQL queries against a fixed trade-data schema. Respond with SQL only.",
		Messages:     []modelclient.RequestMessage{{Role: "human", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("sqlpipeline: generate_sql model call: %w", err)
	}
	return stripCodeFences(resp.Content), nil
}

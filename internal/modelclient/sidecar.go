package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// maxReasoningFieldLen bounds any field named "reasoning" in a structured
// response before it is logged or stored, so a verbose chain-of-thought
// model never blows up a checkpoint row or a log line.
const maxReasoningFieldLen = 2000

// SidecarClient talks to an out-of-process model-serving sidecar over
// plain HTTP + JSON, mirroring the teacher's pattern of a thin Go client
// fronting inference that runs elsewhere. It does not depend on generated
// protobuf/grpc stubs (see DESIGN.md for why grpc was dropped).
type SidecarClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSidecarClient builds a client targeting baseURL (e.g.
// "http://localhost:8081"). timeout bounds every individual HTTP call;
// callers additionally propagate ctx for cancellation.
func NewSidecarClient(baseURL string, timeout time.Duration, logger *slog.Logger) *SidecarClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SidecarClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type invokeRequest struct {
	SystemPrompt string           `json:"system_prompt"`
	Messages     []RequestMessage `json:"messages"`
	Tools        []ToolSpec       `json:"tools,omitempty"`
	Temperature  float64          `json:"temperature"`
	Schema       json.RawMessage  `json:"schema,omitempty"`
}

type invokeResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

func (c *SidecarClient) post(ctx context.Context, path string, body invokeRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("modelclient: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("modelclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("modelclient: sidecar call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("modelclient: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("modelclient: sidecar returned %d: %s", resp.StatusCode, truncate(string(raw), 500))
	}
	return raw, nil
}

// Invoke implements Client.
func (c *SidecarClient) Invoke(ctx context.Context, req Request) (Response, error) {
	raw, err := c.post(ctx, "/v1/invoke", invokeRequest{
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Tools:        req.Tools,
		Temperature:  req.Temperature,
	})
	if err != nil {
		return Response{}, err
	}

	var decoded invokeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, fmt.Errorf("modelclient: decode response: %w", err)
	}
	return Response{Content: decoded.Content, ToolCalls: decoded.ToolCalls}, nil
}

// InvokeStructured implements Client. The sidecar is asked to conform to
// schema; the raw JSON is validated locally before unmarshaling into out,
// so a malformed or hallucinated structured response fails fast with a
// precise error rather than populating out with zero values.
func (c *SidecarClient) InvokeStructured(ctx context.Context, req Request, schema *jsonschema.Schema, out any) error {
	rawSchema, err := json.Marshal(schemaToMap(schema))
	if err != nil {
		return fmt.Errorf("modelclient: encode schema: %w", err)
	}

	raw, err := c.post(ctx, "/v1/invoke_structured", invokeRequest{
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Tools:        req.Tools,
		Temperature:  req.Temperature,
		Schema:       rawSchema,
	})
	if err != nil {
		return err
	}

	var decoded invokeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("modelclient: decode structured envelope: %w", err)
	}

	var payload any
	if err := json.Unmarshal([]byte(decoded.Content), &payload); err != nil {
		return fmt.Errorf("modelclient: structured content is not valid JSON: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("modelclient: structured response failed schema validation: %w", err)
	}

	redacted := redactReasoning(payload)
	redactedJSON, err := json.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("modelclient: re-encode structured content: %w", err)
	}
	if err := json.Unmarshal(redactedJSON, out); err != nil {
		return fmt.Errorf("modelclient: unmarshal structured content: %w", err)
	}
	return nil
}

// schemaToMap round-trips a compiled *jsonschema.Schema back into a plain
// map so it can be shipped to the sidecar as part of the request body; the
// library does not expose its own JSON encoder for a compiled schema.
func schemaToMap(schema *jsonschema.Schema) map[string]any {
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// redactReasoning truncates any "reasoning"-named string field anywhere in
// a decoded JSON value to maxReasoningFieldLen, recursing through nested
// objects and arrays.
func redactReasoning(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			if k == "reasoning" {
				if s, ok := e.(string); ok {
					out[k] = truncate(s, maxReasoningFieldLen)
					continue
				}
			}
			out[k] = redactReasoning(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = redactReasoning(e)
		}
		return out
	default:
		return v
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

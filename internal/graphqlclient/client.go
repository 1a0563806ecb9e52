// Package graphqlclient implements RemoteGraphQLClient: an HTTP client for
// the Atlas GraphQL backend with retry, error classification, and
// budget/breaker integration (spec.md §4.4). Grounded on
// original_source/src/graphql_client.py for the calling sequence and on
// github.com/cenkalti/backoff/v4 (a teacher indirect dependency, promoted
// here to direct use) for the retry loop.
package graphqlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shreyasgm/atlas-router/internal/resilience"
	"github.com/shreyasgm/atlas-router/internal/resilience/breaker"
	"github.com/shreyasgm/atlas-router/internal/resilience/budget"
)

// Client executes GraphQL queries against a single upstream endpoint,
// gated by a shared circuit breaker and an optional shared budget tracker.
type Client struct {
	endpoint   string
	httpClient *http.Client
	breaker    *breaker.Breaker
	budget     *budget.Tracker
	maxRetries int
	backoffBase time.Duration
	logger     *slog.Logger
}

// New builds a Client. budgetTracker may be nil, meaning this endpoint is
// not budget-gated (spec.md §4.4 step 2: "If budget ≠ nil ...").
func New(endpoint string, httpClient *http.Client, br *breaker.Breaker, budgetTracker *budget.Tracker, maxRetries int, backoffBase time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		breaker:     br,
		budget:      budgetTracker,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		logger:      logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   map[string]any  `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Execute runs one query, returning the "data" payload on success.
// sessionID may be empty, in which case only the global budget/any
// session-agnostic accounting applies.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, sessionID string) (map[string]any, error) {
	if c.breaker != nil && c.breaker.IsOpen() {
		return nil, &resilience.CircuitOpenError{Upstream: c.endpoint}
	}
	if c.budget != nil && !c.budget.IsAvailable(sessionID) {
		return nil, &resilience.BudgetExhaustedError{Scope: sessionID}
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("graphqlclient: encode request: %w", err)
	}

	var lastErr error
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoffBase
	bo.Multiplier = 2
	bo.Reset() // restart from backoffBase, not the library's default interval

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, classified := c.attempt(ctx, body)
		if classified == nil {
			if c.breaker != nil {
				c.breaker.RecordSuccess()
			}
			if c.budget != nil {
				c.budget.Consume(sessionID)
			}
			return data, nil
		}

		var transient *resilience.TransientError
		if !errors.As(classified, &transient) {
			// Permanent failure: do not retry, do not count toward the
			// breaker (spec.md §4.3 tie-break — only transient failures
			// trip the circuit).
			return nil, classified
		}

		lastErr = classified
		if c.breaker != nil {
			c.breaker.RecordFailure()
		}
		if attempt < c.maxRetries {
			wait := bo.NextBackOff()
			c.logger.Warn("graphqlclient: transient failure, retrying", "attempt", attempt, "wait", wait, "err", classified)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("graphqlclient: all %d attempts failed: %w", c.maxRetries+1, lastErr)
}

// attempt performs a single HTTP round trip and classifies the outcome.
// A nil error means success; otherwise the returned error is either a
// resilience.TransientError or a resilience.PermanentError.
func (c *Client) attempt(ctx context.Context, body []byte) (map[string]any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, resilience.NewPermanent("build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, resilience.NewTransient("http_call", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransient("read_body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, resilience.NewTransient("http_status", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw))))
	case resp.StatusCode >= 400:
		return nil, resilience.NewPermanent("http_status", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw))))
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, resilience.NewPermanent("decode_body", err)
	}

	if decoded.Data != nil {
		if len(decoded.Errors) > 0 {
			c.logger.Warn("graphqlclient: partial errors alongside data", "errors", joinMessages(decoded.Errors))
		}
		return decoded.Data, nil
	}
	if len(decoded.Errors) > 0 {
		return nil, resilience.NewPermanent("graphql_errors", errors.New(joinMessages(decoded.Errors)))
	}
	return nil, resilience.NewPermanent("empty_response", errors.New("upstream returned neither data nor errors"))
}

func joinMessages(errs []graphqlError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func truncate(s string) string {
	const max = 500
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/checkpoint"
	"github.com/shreyasgm/atlas-router/internal/streaming"
)

// loadOrCreateState returns the checkpointed state for req.ThreadID, or a
// fresh one keyed by a newly minted thread id if none was supplied or none
// exists yet. Overrides present on the request are folded in — they are
// conversation-lifetime (spec.md §3 "override_* ... Conversation-lifetime")
// so a later request without them leaves the earlier value in place.
func (s *Server) loadOrCreateState(ctx context.Context, req ChatRequest, sessionID string) (*agentstate.State, error) {
	threadID := req.ThreadID
	var state *agentstate.State

	if threadID != "" {
		existing, err := s.store.GetLatest(ctx, threadID)
		switch {
		case err == nil:
			state = existing
		case errors.Is(err, checkpoint.ErrNotFound):
			state = agentstate.New(threadID)
		default:
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
	} else {
		state = agentstate.New(uuid.NewString())
	}

	if sessionID != "" {
		state.SessionID = sessionID
	}
	if req.OverrideSchema != "" {
		state.Overrides.Schema = req.OverrideSchema
	}
	if req.OverrideDirection != "" {
		state.Overrides.Direction = req.OverrideDirection
	}
	if req.OverrideMode != "" {
		state.Overrides.Mode = req.OverrideMode
	}
	if req.OverrideAgentMode != "" {
		state.Overrides.AgentMode = req.OverrideAgentMode
	}
	return state, nil
}

// chatHandler handles POST /chat (spec.md §6 non-streaming).
func (s *Server) chatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(c, http.StatusBadRequest, "question is required")
		return
	}
	if verr := validateOverrides(req); verr != nil {
		writeValidationError(c, verr)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	state, err := s.loadOrCreateState(ctx, req, c.GetHeader(sessionHeader))
	if err != nil {
		s.logger.Error("httpserver: load state", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	result, runErr := streaming.Run(ctx, s.graph, state, req.Question)
	if runErr != nil {
		if isTimeout(ctx, runErr) {
			writeError(c, http.StatusGatewayTimeout, "request timed out")
			return
		}
		s.logger.Error("httpserver: graph run", "err", runErr, "thread_id", state.ThreadID)
		writeError(c, http.StatusInternalServerError, "failed to process question")
		return
	}

	if err := s.store.Put(context.WithoutCancel(ctx), state.ThreadID, state); err != nil {
		s.logger.Error("httpserver: checkpoint put", "err", err, "thread_id", state.ThreadID)
	}

	c.JSON(http.StatusOK, result)
}

// chatStreamHandler handles POST /chat/stream (spec.md §6 SSE). Each
// Event is written as a named SSE frame before the client sees any bytes
// of a bad turn — ValidateWiring already guarantees store/graph are
// non-nil at startup, so the 503 guard here only covers a process that
// somehow reached request-serving without completing wiring (defensive,
// not a reachable path in a correctly started process).
func (s *Server) chatStreamHandler(c *gin.Context) {
	if s.store == nil || s.graph == nil {
		writeError(c, http.StatusServiceUnavailable, "service not ready")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(c, http.StatusBadRequest, "question is required")
		return
	}
	if verr := validateOverrides(req); verr != nil {
		writeValidationError(c, verr)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	state, err := s.loadOrCreateState(ctx, req, c.GetHeader(sessionHeader))
	if err != nil {
		s.logger.Error("httpserver: load state", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher, canFlush := c.Writer.(http.Flusher)

	emit := func(ev streaming.Event) {
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			s.logger.Error("httpserver: marshal SSE event", "err", err, "event", ev.Name)
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Name, payload)
		if canFlush {
			flusher.Flush()
		}
	}

	runErr := streaming.Stream(ctx, s.graph, state, req.Question, emit)
	if runErr != nil {
		s.logger.Error("httpserver: graph stream", "err", runErr, "thread_id", state.ThreadID)
		emit(streaming.Event{Name: streaming.EventToolOutput, Data: gin.H{
			"source": "system", "messageType": "tool_output", "content": runErr.Error(),
		}})
		return
	}

	if err := s.store.Put(context.WithoutCancel(ctx), state.ThreadID, state); err != nil {
		s.logger.Error("httpserver: checkpoint put", "err", err, "thread_id", state.ThreadID)
	}
}

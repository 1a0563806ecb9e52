package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/checkpoint"
)

// createThreadHandler handles POST /threads (spec.md §6 "{thread_id} (new
// UUID)"). No request body or header is required; the row is created with
// no session, and a later /chat call on this thread does not attach the
// X-Session-Id it carries, so the thread is not listed by GET /threads.
func (s *Server) createThreadHandler(c *gin.Context) {
	threadID := uuid.NewString()

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if _, err := s.store.CreateConversation(ctx, threadID, ""); err != nil {
		s.logger.Error("httpserver: create conversation", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to create thread")
		return
	}
	c.JSON(http.StatusOK, ThreadResponse{ThreadID: threadID})
}

// listThreadsHandler handles GET /threads (spec.md §6: X-Session-Id
// required).
func (s *Server) listThreadsHandler(c *gin.Context) {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, sessionHeader+" header is required")
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	convs, err := s.store.ListConversations(ctx, sessionID)
	if err != nil {
		s.logger.Error("httpserver: list conversations", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to list threads")
		return
	}

	out := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, ConversationResponse{
			ThreadID:  conv.ThreadID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt.Format(time.RFC3339),
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// deleteThreadHandler handles DELETE /threads/{id} (spec.md §6 "204;
// idempotent").
func (s *Server) deleteThreadHandler(c *gin.Context) {
	threadID := c.Param("id")

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.store.Delete(ctx, threadID); err != nil {
		s.logger.Error("httpserver: delete conversation", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to delete thread")
		return
	}
	c.Status(http.StatusNoContent)
}

// getMessagesHandler handles GET /threads/{id}/messages (spec.md §6 "404
// if no checkpoint"). Only human/assistant messages are surfaced — tool
// messages are an implementation detail of the pipeline, not part of the
// conversation the spec's response shape describes.
func (s *Server) getMessagesHandler(c *gin.Context) {
	threadID := c.Param("id")

	ctx, cancel := s.requestContext(c)
	defer cancel()

	state, err := s.store.GetLatest(ctx, threadID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			writeError(c, http.StatusNotFound, "no checkpoint for thread "+threadID)
			return
		}
		s.logger.Error("httpserver: get latest checkpoint", "err", err)
		writeError(c, http.StatusInternalServerError, "failed to load thread")
		return
	}

	messages := make([]MessageView, 0, len(state.Messages))
	for _, m := range state.Messages {
		if m.Role != agentstate.RoleHuman && m.Role != agentstate.RoleAssistant {
			continue
		}
		messages = append(messages, MessageView{Role: string(m.Role), Content: m.Content})
	}

	summaries := make([]any, len(state.TurnSummaries))
	for i, ts := range state.TurnSummaries {
		summaries[i] = ts
	}

	c.JSON(http.StatusOK, MessagesResponse{
		Messages: messages,
		Overrides: overridesView{
			Schema:    state.Overrides.Schema,
			Direction: state.Overrides.Direction,
			Mode:      state.Overrides.Mode,
			AgentMode: state.Overrides.AgentMode,
		},
		TurnSummaries: summaries,
	})
}

// Package checkpoint persists per-thread agentstate.State across HTTP
// invocations (spec.md §4.9 CheckpointStore) and the Conversation rows
// (spec.md §3 "Conversation": threadId, sessionId, title, createdAt,
// updatedAt, keyed by threadId with a secondary index on sessionId).
// Grounded on the teacher's pkg/database/client.go (pgxpool connect +
// migration-on-boot shape) and pkg/session/manager.go (per-thread /
// per-session persistence with a secondary index), translated from ent's
// generated query builder to plain pgx/v5 SQL (see DESIGN.md for why ent
// was dropped — no codegen may run in this exercise).
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// ErrNotFound is returned by GetLatest and GetConversation when no row
// exists for the given thread id. Checked with errors.Is, not a 500 —
// spec.md §6 "404 if no checkpoint" on GET /threads/{id}/messages.
var ErrNotFound = errors.New("checkpoint: not found")

// Conversation is the persisted metadata row for one thread (spec.md §3).
type Conversation struct {
	ThreadID  string    `json:"thread_id"`
	SessionID string    `json:"session_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the CheckpointStore contract (spec.md §4.9). Implementations
// must serialize concurrent Put calls for the same thread id at step
// granularity (spec.md §5 "Ordering guarantees" — last write wins;
// overlapping writes for the same thread are a client error, not
// something Store is required to detect).
type Store interface {
	// CreateConversation registers a new thread, optionally indexed under
	// sessionID (empty sessionID means the conversation is not indexed
	// for later listing — spec.md §6 "Validation").
	CreateConversation(ctx context.Context, threadID, sessionID string) (Conversation, error)

	// GetConversation returns the conversation row for threadID, or
	// ErrNotFound.
	GetConversation(ctx context.Context, threadID string) (Conversation, error)

	// ListConversations returns every conversation indexed under
	// sessionID, most recently updated first.
	ListConversations(ctx context.Context, sessionID string) ([]Conversation, error)

	// Put persists state as the latest checkpoint for threadID and
	// touches the conversation's UpdatedAt (and Title, derived from the
	// first human message, if not already set).
	Put(ctx context.Context, threadID string, state *agentstate.State) error

	// GetLatest returns the most recently persisted state for threadID,
	// or ErrNotFound if the thread has never been checkpointed.
	GetLatest(ctx context.Context, threadID string) (*agentstate.State, error)

	// Delete removes the checkpoint and conversation row for threadID.
	// Idempotent: deleting an absent thread is not an error (spec.md §6
	// "204; idempotent").
	Delete(ctx context.Context, threadID string) error
}

// deriveTitle picks the first human message's content, truncated, as a
// conversation title (original_source has no direct analogue; this
// mirrors the sibling reasoning-field truncation in
// internal/modelclient/sidecar.go's maxReasoningFieldLen 2000-char cap,
// scaled down for a UI-facing title).
const maxTitleLen = 120

func deriveTitle(state *agentstate.State) string {
	for _, m := range state.Messages {
		if m.Role == agentstate.RoleHuman && m.Content != "" {
			if len(m.Content) > maxTitleLen {
				return m.Content[:maxTitleLen]
			}
			return m.Content
		}
	}
	return ""
}

func marshalState(state *agentstate.State) ([]byte, error) {
	return json.Marshal(state)
}

func unmarshalState(raw []byte) (*agentstate.State, error) {
	var state agentstate.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

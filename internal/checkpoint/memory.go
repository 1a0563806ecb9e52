package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// MemoryStore is the in-process Store fallback used "on bootstrap without
// a backing store" (spec.md §4.9). Safe for concurrent use; serializes
// every operation behind one mutex, the same single-mutex discipline
// internal/catalog.Cache uses for its small, read-mostly shared state.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string]Conversation
	bySession     map[string][]string // sessionID -> thread ids, insertion order
	states        map[string]*agentstate.State
	now           func() time.Time
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]Conversation),
		bySession:     make(map[string][]string),
		states:        make(map[string]*agentstate.State),
		now:           time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) CreateConversation(ctx context.Context, threadID, sessionID string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	conv := Conversation{ThreadID: threadID, SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
	m.conversations[threadID] = conv
	if sessionID != "" {
		m.bySession[sessionID] = append(m.bySession[sessionID], threadID)
	}
	return conv, nil
}

func (m *MemoryStore) GetConversation(ctx context.Context, threadID string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[threadID]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (m *MemoryStore) ListConversations(ctx context.Context, sessionID string) ([]Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.bySession[sessionID]
	out := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		if conv, ok := m.conversations[id]; ok {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) Put(ctx context.Context, threadID string, state *agentstate.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := state.Snapshot()
	m.states[threadID] = &snap

	conv, ok := m.conversations[threadID]
	if !ok {
		now := m.now()
		conv = Conversation{ThreadID: threadID, SessionID: state.SessionID, CreatedAt: now}
		if state.SessionID != "" {
			m.bySession[state.SessionID] = append(m.bySession[state.SessionID], threadID)
		}
	}
	if conv.Title == "" {
		conv.Title = deriveTitle(&snap)
	}
	conv.UpdatedAt = m.now()
	m.conversations[threadID] = conv
	return nil
}

func (m *MemoryStore) GetLatest(ctx context.Context, threadID string) (*agentstate.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	snap := state.Snapshot()
	return &snap, nil
}

func (m *MemoryStore) Delete(ctx context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, threadID)
	conv, ok := m.conversations[threadID]
	delete(m.conversations, threadID)
	if ok && conv.SessionID != "" {
		ids := m.bySession[conv.SessionID]
		for i, id := range ids {
			if id == threadID {
				m.bySession[conv.SessionID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

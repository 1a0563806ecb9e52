package checkpoint

import (
	stdsql "database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for migrate

	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

//go:embed migrations
var migrationsFS embed.FS

// PostgresStore persists conversations and checkpoints in two tables
// (migrations/0001_init.up.sql), queried through a pgxpool.Pool shared
// with the rest of the process. Migrations run once at construction
// using golang-migrate against a throwaway database/sql handle (the
// pgx/v5/stdlib adapter), mirroring the teacher's pkg/database/client.go
// runMigrations, minus the Ent-specific GIN-index step (no ent schema
// here — see DESIGN.md for why ent itself was dropped).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens dsn, applies pending migrations, and returns a
// Store backed by it. dsn must be a pgx-compatible connection string.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("checkpoint: run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("checkpoint: ping: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func runMigrations(dsn string) error {
	db, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "atlasrouter_checkpoint", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer sourceDriver.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateConversation(ctx context.Context, threadID, sessionID string) (Conversation, error) {
	var conv Conversation
	row := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (thread_id, session_id)
		VALUES ($1, $2)
		ON CONFLICT (thread_id) DO UPDATE SET thread_id = EXCLUDED.thread_id
		RETURNING thread_id, session_id, title, created_at, updated_at`,
		threadID, sessionID)
	if err := row.Scan(&conv.ThreadID, &conv.SessionID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return Conversation{}, fmt.Errorf("checkpoint: create conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, threadID string) (Conversation, error) {
	var conv Conversation
	row := s.pool.QueryRow(ctx, `
		SELECT thread_id, session_id, title, created_at, updated_at
		FROM conversations WHERE thread_id = $1`, threadID)
	if err := row.Scan(&conv.ThreadID, &conv.SessionID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, fmt.Errorf("checkpoint: get conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, sessionID string) ([]Conversation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT thread_id, session_id, title, created_at, updated_at
		FROM conversations WHERE session_id = $1
		ORDER BY updated_at DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ThreadID, &conv.SessionID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("checkpoint: scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Put(ctx context.Context, threadID string, state *agentstate.State) error {
	raw, err := marshalState(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}
	title := deriveTitle(state)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO conversations (thread_id, session_id, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (thread_id) DO UPDATE SET
			updated_at = now(),
			title = CASE WHEN conversations.title = '' THEN EXCLUDED.title ELSE conversations.title END`,
		threadID, state.SessionID, title); err != nil {
		return fmt.Errorf("checkpoint: upsert conversation: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO checkpoints (thread_id, state)
		VALUES ($1, $2)
		ON CONFLICT (thread_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		threadID, raw); err != nil {
		return fmt.Errorf("checkpoint: upsert state: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetLatest(ctx context.Context, threadID string) (*agentstate.State, error) {
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM checkpoints WHERE thread_id = $1`, threadID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("checkpoint: get latest: %w", err)
	}
	return unmarshalState(raw)
}

func (s *PostgresStore) Delete(ctx context.Context, threadID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE thread_id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("checkpoint: delete: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

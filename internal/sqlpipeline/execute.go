package sqlpipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// Executor runs validated SQL against a read-only connection pool, timing
// the operation and retrying transient driver errors with bounded backoff
// (spec.md §4.5 node 7, original_source execute_sql_node).
type Executor struct {
	pool        *pgxpool.Pool
	maxRetries  int
	backoffBase time.Duration
	logger      *slog.Logger
}

// NewExecutor builds an Executor over a read-only pgxpool.Pool.
func NewExecutor(pool *pgxpool.Pool, maxRetries int, backoffBase time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{pool: pool, maxRetries: maxRetries, backoffBase: backoffBase, logger: logger}
}

// ExecuteResult carries the structured output of one query execution.
type ExecuteResult struct {
	Result          agentstate.SQLResult
	ExecutionTimeMs int64
	Err             error
}

// isTransientPgError classifies a pgx error by SQLSTATE class: connection
// exceptions (08), insufficient resources (53), and
// cannot_connect_now/admin_shutdown (57P03/57P01) are transient driver
// errors; everything else (syntax, permission, undefined table) is
// permanent and must not be retried.
func isTransientPgError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code[:2] {
		case "08", "53":
			return true
		}
		switch pgErr.Code {
		case "57P01", "57P03":
			return true
		}
		return false
	}
	// A connection-level error (not a *pgconn.PgError) reaching here —
	// e.g. a dial timeout — is transient.
	return true
}

// Execute runs sql, returning structured columns/rows and the wall-clock
// time in milliseconds. Transient driver errors are retried with bounded
// exponential backoff; on exhaustion (or a permanent error) Err is set and
// an empty result is returned so the caller can populate last_error.
func (e *Executor) Execute(ctx context.Context, sql string) ExecuteResult {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.backoffBase
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	bo.Reset() // restart from backoffBase, not the library's default interval

	start := time.Now()
	var result agentstate.SQLResult
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		result, lastErr = e.runOnce(ctx, sql)
		if lastErr == nil {
			break
		}
		if !isTransientPgError(lastErr) {
			break
		}
		if attempt < e.maxRetries {
			wait := bo.NextBackOff()
			e.logger.Warn("sqlpipeline: transient driver error, retrying", "attempt", attempt, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = e.maxRetries
			case <-time.After(wait):
			}
		}
	}

	elapsed := time.Since(start).Milliseconds()
	if lastErr != nil {
		return ExecuteResult{ExecutionTimeMs: elapsed, Err: fmt.Errorf("sqlpipeline: query execution failed: %w", lastErr)}
	}
	return ExecuteResult{Result: result, ExecutionTimeMs: elapsed}
}

func (e *Executor) runOnce(ctx context.Context, sql string) (agentstate.SQLResult, error) {
	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return agentstate.SQLResult{}, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	var resultRows [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return agentstate.SQLResult{}, err
		}
		resultRows = append(resultRows, vals)
	}
	if err := rows.Err(); err != nil {
		return agentstate.SQLResult{}, err
	}

	return agentstate.SQLResult{Columns: columns, Rows: resultRows}, nil
}

package sqlpipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/cachekey"
)

// CodeCandidate is one candidate product code surfaced for the final
// Model-arbitrated selection, mirroring original_source
// product_and_schema_lookup.py's db_suggestions/llm_suggestions dict shape.
type CodeCandidate struct {
	Code  string
	Name  string
	Level string
}

// productSearchResult bundles one product mention's candidates, mirroring
// original_source ProductSearchResult.
type productSearchResult struct {
	Name            string
	Schema          string
	LLMSuggestions  []CodeCandidate
	DBSuggestions   []CodeCandidate
}

// codeLookup queries the product classification tables for candidate
// codes, backed by a set-keyed cache (order-insensitive over the
// requested code set, per spec.md §8 "Order-invariance").
type codeLookup struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string][]CodeCandidate
}

func newCodeLookup(pool *pgxpool.Pool, logger *slog.Logger) *codeLookup {
	return &codeLookup{pool: pool, logger: logger, cache: make(map[string][]CodeCandidate)}
}

// officialDetails verifies LLM-suggested codes against the database and
// returns their official names, mirroring
// product_and_schema_lookup.py._get_official_product_details. Cached by
// (schema, sorted codes) — order-insensitive (spec.md §8).
func (l *codeLookup) officialDetails(ctx context.Context, schema string, codes []string) ([]CodeCandidate, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	table, ok := SchemaToProductsTable[schema]
	if !ok {
		return nil, fmt.Errorf("sqlpipeline: invalid classification schema %q", schema)
	}

	key := "official:" + schema + ":" + cachekey.SortedSet(codes)
	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	query := fmt.Sprintf(`
		SELECT DISTINCT code, name_short_en, product_level
		FROM %s
		WHERE code = ANY($1)`, table)

	rows, err := l.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("sqlpipeline: official code lookup: %w", err)
	}
	defer rows.Close()

	var out []CodeCandidate
	for rows.Next() {
		var c CodeCandidate
		if err := rows.Scan(&c.Code, &c.Name, &c.Level); err != nil {
			return nil, fmt.Errorf("sqlpipeline: scan official code row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlpipeline: official code rows: %w", err)
	}

	l.mu.Lock()
	l.cache[key] = out
	l.mu.Unlock()
	return out, nil
}

// textSearch performs a case-insensitive full-text search over product
// names, falling back to trigram similarity when the full-text search
// returns nothing — mirroring product_and_schema_lookup.py._direct_text_search.
func (l *codeLookup) textSearch(ctx context.Context, productName, schema string) ([]CodeCandidate, error) {
	table, ok := SchemaToProductsTable[schema]
	if !ok {
		return nil, fmt.Errorf("sqlpipeline: invalid classification schema %q", schema)
	}

	key := "search:" + cachekey.Pair(productName, schema)
	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	ftsQuery := fmt.Sprintf(`
		SELECT DISTINCT code, name_short_en, product_level
		FROM %s
		WHERE to_tsvector('english', name_short_en) @@ plainto_tsquery('english', $1)
		LIMIT 10`, table)

	rows, err := l.pool.Query(ctx, ftsQuery, productName)
	if err != nil {
		return nil, fmt.Errorf("sqlpipeline: text search: %w", err)
	}
	out, err := scanCodeCandidates(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		// Trigram fallback for misspellings / partial matches.
		trgmQuery := fmt.Sprintf(`
			SELECT DISTINCT code, name_short_en, product_level
			FROM %s
			WHERE similarity(name_short_en, $1) > 0.2
			ORDER BY similarity(name_short_en, $1) DESC
			LIMIT 10`, table)
		rows, err := l.pool.Query(ctx, trgmQuery, productName)
		if err != nil {
			return nil, fmt.Errorf("sqlpipeline: trigram text search: %w", err)
		}
		out, err = scanCodeCandidates(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	l.cache[key] = out
	l.mu.Unlock()
	return out, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCodeCandidates(rows pgxRows) ([]CodeCandidate, error) {
	var out []CodeCandidate
	for rows.Next() {
		var c CodeCandidate
		if err := rows.Scan(&c.Code, &c.Name, &c.Level); err != nil {
			return nil, fmt.Errorf("sqlpipeline: scan search row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlpipeline: search rows: %w", err)
	}
	return out, nil
}

// formatCodesForPrompt renders a ProductCodesMapping-shaped selection as
// the flat "codes" string generate_sql's few-shot prompt expects,
// mirroring original_source format_product_codes_for_prompt.
func formatCodesForPrompt(mappings []productMention) string {
	var b strings.Builder
	for _, m := range mappings {
		if len(m.Codes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%s): %s\n", m.Name, m.Schema, strings.Join(m.Codes, ", "))
	}
	return b.String()
}

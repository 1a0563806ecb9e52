package sqlpipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/cachekey"
)

// tableInfoCache holds rendered DDL strings keyed by the order-insensitive
// set of classification schemas, mirroring original_source src/cache.py's
// table_info_cache + table_info_key (spec.md §8 "Order-invariance":
// tableInfoKey({"hs92","sitc"}) == tableInfoKey({"sitc","hs92"})).
type tableInfoCache struct {
	pool *pgxpool.Pool

	mu    sync.Mutex
	cache map[string]string
}

func newTableInfoCache(pool *pgxpool.Pool) *tableInfoCache {
	return &tableInfoCache{pool: pool, cache: make(map[string]string)}
}

// TableInfoKey returns the canonical cache key for a set of classification
// schemas, exported for tests verifying the order-invariance property.
func TableInfoKey(schemas []string) string {
	return cachekey.SortedSet(schemas)
}

// get returns the rendered DDL for the given classification schemas,
// mirroring original_source get_table_info_for_schemas: data tables for
// each schema plus the classification lookup tables needed for JOINs,
// excluding large group-aggregate tables.
func (c *tableInfoCache) get(ctx context.Context, schemas []string) (string, error) {
	key := TableInfoKey(schemas)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	tables := tablesInSchemas(schemas)
	tables = append(tables, classificationTablesForSchemas(schemas)...)

	var filtered []TableDescription
	for _, t := range tables {
		if !strings.Contains(t.TableName, groupAggregateMarker) {
			filtered = append(filtered, t)
		}
	}

	var b strings.Builder
	for _, t := range filtered {
		fmt.Fprintf(&b, "Table: %s\nDescription: %s\n", t.TableName, t.Context)
		ddl, err := c.renderDDL(ctx, t.TableName)
		if err != nil {
			return "", err
		}
		b.WriteString(ddl)
		b.WriteString("\n\n")
	}

	rendered := b.String()
	c.mu.Lock()
	c.cache[key] = rendered
	c.mu.Unlock()
	return rendered, nil
}

// renderDDL produces a CREATE TABLE statement from information_schema
// column metadata — a stand-in for SQLAlchemy's reflection-based
// get_table_info in original_source sql_multiple_schemas.py, adapted to
// pgx's lack of an ORM reflection layer.
func (c *tableInfoCache) renderDDL(ctx context.Context, qualifiedName string) (string, error) {
	parts := strings.SplitN(qualifiedName, ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("sqlpipeline: table name %q is not schema-qualified", qualifiedName)
	}
	schema, table := parts[0], parts[1]

	rows, err := c.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return "", fmt.Errorf("sqlpipeline: introspect %s: %w", qualifiedName, err)
	}
	defer rows.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", qualifiedName)
	first := true
	for rows.Next() {
		var col, typ string
		if err := rows.Scan(&col, &typ); err != nil {
			return "", fmt.Errorf("sqlpipeline: scan column: %w", err)
		}
		if !first {
			b.WriteString(",\n")
		}
		first = false
		fmt.Fprintf(&b, "\t%s %s", col, typ)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("sqlpipeline: column rows: %w", err)
	}
	b.WriteString("\n)")
	return b.String(), nil
}

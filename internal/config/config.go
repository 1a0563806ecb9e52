// Package config loads and validates the single configuration object
// spec.md §6 describes: database URL, per-endpoint GraphQL base URLs,
// rate-limit settings, retry/backoff parameters, circuit thresholds,
// per-question max tool uses, per-query row cap, agent mode default,
// request timeout, and model sidecar selection. Grounded on the teacher's
// pkg/database/config.go (env-var loader with production defaults,
// eager Validate) and pkg/config/validator.go (fail-fast ValidateAll
// ordering), simplified from the teacher's YAML-file loader to env-only
// since spec.md §6 names no configuration file format.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
)

// Config is the process-wide configuration object (spec.md §6
// "Environment / configuration").
type Config struct {
	// DatabaseURL is the read-only Postgres connection string for
	// sqlpipeline's execute_sql node and get_table_info DDL lookups.
	DatabaseURL string

	// CheckpointDatabaseURL backs internal/checkpoint. Defaults to
	// DatabaseURL when unset, matching the teacher's single-database
	// deployment shape.
	CheckpointDatabaseURL string

	// ExploreAPIURL and CountryPagesAPIURL are the two remote GraphQL
	// endpoints RemoteGraphQLClient targets (spec.md §4.6 node 5).
	ExploreAPIURL      string
	CountryPagesAPIURL string

	// ModelSidecarURL points at the out-of-process model-serving sidecar
	// (internal/modelclient.SidecarClient).
	ModelSidecarURL string
	ModelTimeout    time.Duration

	// Rate-limit settings (internal/resilience/budget).
	BudgetMaxRequests int
	BudgetWindow      time.Duration

	// Retry/backoff parameters shared by RemoteGraphQLClient and
	// sqlpipeline.Executor.
	MaxRetries  int
	BackoffBase time.Duration

	// Circuit breaker thresholds (internal/resilience/breaker), one pair
	// per remote GraphQL endpoint.
	CircuitFailureThreshold int
	CircuitRecoveryTimeout  time.Duration

	// MaxToolUses is the per-question tool budget (spec.md §4.8 routing:
	// queries_executed >= MaxToolUses routes to max_queries_exceeded).
	MaxToolUses int

	// RowCap is top_k, the per-query row limit passed into generate_sql's
	// prompt (spec.md §4.5 node 5).
	RowCap int

	// DefaultAgentMode seeds AgentMode when a request carries no
	// override_agent_mode (spec.md §4.8 "Mode resolution").
	DefaultAgentMode agentstate.AgentMode

	// RequestTimeout bounds a single HTTP request end to end (spec.md §5
	// "Cancellation & timeouts").
	RequestTimeout time.Duration

	// CatalogTTL bounds how long a CatalogCache entry is considered fresh
	// before the next Lookup/GetAll triggers a refetch (spec.md §4.1).
	CatalogTTL time.Duration

	// HTTPPort is the address the HTTP server listens on.
	HTTPPort string
}

// Load reads configuration from the process environment, optionally
// seeded by a .env file at envPath (a missing file is not an error —
// mirrors the teacher's cmd/tarsy/main.go "Continuing with existing
// environment variables" fallback). Load validates eagerly: a malformed
// or missing required value fails at startup rather than at request time.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	budgetWindow, err := parseDurationEnv("BUDGET_WINDOW_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	backoffBaseMs, err := parseIntEnv("BACKOFF_BASE_MS", 500)
	if err != nil {
		return nil, err
	}
	backoffBase := time.Duration(backoffBaseMs) * time.Millisecond
	recoveryTimeout, err := parseDurationEnv("CIRCUIT_RECOVERY_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	modelTimeout, err := parseDurationEnv("MODEL_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	requestTimeout, err := parseDurationEnv("REQUEST_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	catalogTTL, err := parseDurationEnv("CATALOG_TTL_SECONDS", 3600)
	if err != nil {
		return nil, err
	}

	budgetMax, err := parseIntEnv("BUDGET_MAX_REQUESTS", 1000)
	if err != nil {
		return nil, err
	}
	maxRetries, err := parseIntEnv("MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	circuitThreshold, err := parseIntEnv("CIRCUIT_FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}
	maxToolUses, err := parseIntEnv("MAX_TOOL_USES", 5)
	if err != nil {
		return nil, err
	}
	rowCap, err := parseIntEnv("ROW_CAP", 50)
	if err != nil {
		return nil, err
	}

	dbURL := os.Getenv("DATABASE_URL")
	checkpointURL := getEnvOrDefault("CHECKPOINT_DATABASE_URL", dbURL)

	cfg := &Config{
		DatabaseURL:             dbURL,
		CheckpointDatabaseURL:   checkpointURL,
		ExploreAPIURL:           os.Getenv("EXPLORE_API_URL"),
		CountryPagesAPIURL:      os.Getenv("COUNTRY_PAGES_API_URL"),
		ModelSidecarURL:         getEnvOrDefault("MODEL_SIDECAR_URL", "http://localhost:8081"),
		ModelTimeout:            modelTimeout,
		BudgetMaxRequests:       budgetMax,
		BudgetWindow:            budgetWindow,
		MaxRetries:              maxRetries,
		BackoffBase:             backoffBase,
		CircuitFailureThreshold: circuitThreshold,
		CircuitRecoveryTimeout:  recoveryTimeout,
		MaxToolUses:             maxToolUses,
		RowCap:                  rowCap,
		DefaultAgentMode:        agentstate.AgentMode(getEnvOrDefault("DEFAULT_AGENT_MODE", string(agentstate.ModeAuto))),
		RequestTimeout:          requestTimeout,
		CatalogTTL:              catalogTTL,
		HTTPPort:                getEnvOrDefault("HTTP_PORT", "8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs eager, fail-fast validation (teacher
// pkg/config/validator.go ValidateAll pattern, simplified to the flat
// field set Load already collected).
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.ExploreAPIURL == "" {
		return fmt.Errorf("config: EXPLORE_API_URL is required")
	}
	if c.CountryPagesAPIURL == "" {
		return fmt.Errorf("config: COUNTRY_PAGES_API_URL is required")
	}
	if c.ModelSidecarURL == "" {
		return fmt.Errorf("config: MODEL_SIDECAR_URL is required")
	}
	if c.BudgetMaxRequests < 1 {
		return fmt.Errorf("config: BUDGET_MAX_REQUESTS must be at least 1")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MAX_RETRIES cannot be negative")
	}
	if c.CircuitFailureThreshold < 1 {
		return fmt.Errorf("config: CIRCUIT_FAILURE_THRESHOLD must be at least 1")
	}
	if c.MaxToolUses < 0 {
		return fmt.Errorf("config: MAX_TOOL_USES cannot be negative")
	}
	if c.RowCap < 1 {
		return fmt.Errorf("config: ROW_CAP must be at least 1")
	}
	switch c.DefaultAgentMode {
	case agentstate.ModeAuto, agentstate.ModeSQLOnly, agentstate.ModeGraphQLSQL, agentstate.ModeGraphQLOnly:
	default:
		return fmt.Errorf("config: DEFAULT_AGENT_MODE %q is not one of auto, sql_only, graphql_sql, graphql_only", c.DefaultAgentMode)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return n, nil
}

func parseDurationEnv(key string, defaultSeconds int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(defaultSeconds) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return time.Duration(n) * time.Second, nil
}

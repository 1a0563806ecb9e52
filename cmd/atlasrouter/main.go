// Command atlasrouter starts the natural-language-to-data HTTP/SSE server
// (spec.md §6). It wires configuration, resilience primitives, the
// pipelines, and the agent graph into one internal/httpserver.Server and
// serves it until an interrupt or terminate signal arrives.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/shreyasgm/atlas-router/internal/agentgraph"
	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/checkpoint"
	"github.com/shreyasgm/atlas-router/internal/config"
	"github.com/shreyasgm/atlas-router/internal/docspipeline"
	"github.com/shreyasgm/atlas-router/internal/graphqlclient"
	"github.com/shreyasgm/atlas-router/internal/graphqlpipeline"
	"github.com/shreyasgm/atlas-router/internal/httpserver"
	"github.com/shreyasgm/atlas-router/internal/modelclient"
	"github.com/shreyasgm/atlas-router/internal/resilience/breaker"
	"github.com/shreyasgm/atlas-router/internal/resilience/budget"
	"github.com/shreyasgm/atlas-router/internal/sqlpipeline"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	envPath := filepath.Join(*configDir, ".env")
	cfg, err := config.Load(envPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("atlasrouter exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Resilience primitives, shared across every call site that needs them
	// (spec.md §4.2, §4.3: one BudgetTracker per deployment, one Breaker
	// per remote endpoint).
	globalBudget := budget.New(cfg.BudgetMaxRequests, cfg.BudgetWindow)
	exploreBreaker := breaker.New(cfg.CircuitFailureThreshold, cfg.CircuitRecoveryTimeout)
	countryPagesBreaker := breaker.New(cfg.CircuitFailureThreshold, cfg.CircuitRecoveryTimeout)

	exploreClient := graphqlclient.New(cfg.ExploreAPIURL, nil, exploreBreaker, globalBudget, cfg.MaxRetries, cfg.BackoffBase, logger)
	countryPagesClient := graphqlclient.New(cfg.CountryPagesAPIURL, nil, countryPagesBreaker, globalBudget, cfg.MaxRetries, cfg.BackoffBase, logger)

	model := modelclient.NewSidecarClient(cfg.ModelSidecarURL, cfg.ModelTimeout, logger)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("connected to trade database")

	countries := newCountriesCache(pool, cfg.CatalogTTL)
	products := newProductsCache(pool, cfg.CatalogTTL)
	services := newServicesCache(pool, cfg.CatalogTTL)
	// No region/income-group lookup table is present in the trade schema
	// (only group-to-group aggregate data tables, which get_table_info
	// already excludes via groupAggregateMarker) — group/region resolution
	// is out of scope for this deployment (DESIGN.md).
	var groups *catalog.Cache

	registry := catalog.NewRegistry()
	registry.Register(countries)
	registry.Register(products)
	registry.Register(services)

	if err := warmCatalogs(ctx, countries, products, services); err != nil {
		logger.Warn("catalog warm-up failed, caches will lazily populate on first request", "err", err)
	}

	sql := sqlpipeline.New(model, pool, logger, cfg.MaxRetries, cfg.BackoffBase, cfg.RowCap, cfg.MaxToolUses)
	gql := graphqlpipeline.New(model, countries, products, services, groups, exploreClient, countryPagesClient, logger, cfg.MaxToolUses)
	docs := docspipeline.New(model, logger)

	graph := agentgraph.New(model, sql, gql, docs, globalBudget, cfg.DefaultAgentMode, cfg.MaxToolUses, cfg.RowCap, logger)

	store, err := newCheckpointStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closer, ok := store.(interface{ Close() }); ok {
		defer closer.Close()
	}

	server := httpserver.NewServer(cfg.RequestTimeout, logger)
	server.SetStore(store)
	server.SetGraph(graph)
	server.SetCatalogRegistry(registry)
	if err := server.ValidateWiring(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.HTTPPort)
		serveErr <- server.StartWithListener(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// warmCatalogs populates the countries/products/services caches
// concurrently at startup (GetAll triggers ensureFresh's fetch-if-stale
// path), so the first incoming requests don't pay a cold-cache fetch one
// at a time. A failure here is not fatal — the caches fall back to
// lazy, stampede-safe population inside catalog.Cache on first use.
func warmCatalogs(ctx context.Context, caches ...*catalog.Cache) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range caches {
		c := c
		g.Go(func() error {
			_, err := c.GetAll(gctx)
			return err
		})
	}
	return g.Wait()
}

// newCheckpointStore opens a PostgresStore against cfg.CheckpointDatabaseURL,
// falling back to an in-memory store if the connection cannot be
// established (spec.md §4.9 "bootstrap without a backing store").
func newCheckpointStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (checkpoint.Store, error) {
	store, err := checkpoint.NewPostgresStore(ctx, cfg.CheckpointDatabaseURL)
	if err != nil {
		logger.Warn("checkpoint database unavailable, falling back to in-memory store", "err", err)
		return checkpoint.NewMemoryStore(), nil
	}
	return store, nil
}

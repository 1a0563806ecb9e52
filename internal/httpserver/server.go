// Package httpserver implements the HTTP/SSE surface spec.md §6 describes:
// health, thread CRUD, and the chat/chat-stream endpoints, plus an
// ops-only /debug/caches endpoint (SUPPLEMENTED FEATURES, SPEC_FULL.md).
// Grounded on the teacher's pkg/api/server.go constructor + Set* +
// ValidateWiring pattern, translated from echo v5 (the teacher's actual
// import) to gin (the teacher's declared go.mod dependency — see
// DESIGN.md).
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shreyasgm/atlas-router/internal/agentstate"
	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/checkpoint"
)

// graphRunner is the one method Server needs from internal/agentgraph.Graph,
// declared locally so tests can drive handlers against a fake graph
// without a model, database, or catalogs (mirrors
// internal/streaming.graphRunner).
type graphRunner interface {
	Run(ctx context.Context, state *agentstate.State, question string) error
}

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	requestTimeout time.Duration
	logger         *slog.Logger

	store    checkpoint.Store  // nil until set
	graph    graphRunner       // nil until set
	registry *catalog.Registry // nil if /debug/caches is disabled
}

// NewServer builds a Server and registers every route. requestTimeout
// bounds every request end to end (spec.md §5 "Cancellation & timeouts").
func NewServer(requestTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:         engine,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
	s.setupRoutes()
	return s
}

// SetStore wires the checkpoint store (spec.md §4.9).
func (s *Server) SetStore(store checkpoint.Store) { s.store = store }

// SetGraph wires the composed agent graph (spec.md §4.8).
func (s *Server) SetGraph(graph graphRunner) { s.graph = graph }

// SetCatalogRegistry wires the catalog registry backing the optional
// /debug/caches observability endpoint (SPEC_FULL.md "SUPPLEMENTED
// FEATURES" #3). Leaving this unset simply omits the endpoint's data —
// ValidateWiring does not require it.
func (s *Server) SetCatalogRegistry(r *catalog.Registry) { s.registry = r }

// ValidateWiring checks that every required dependency has been wired via
// its Set* method. Call after every Set* and before Start, so a
// composition-root mistake fails at startup instead of as a 500 on the
// first request (teacher pkg/api/server.go ValidateWiring).
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.store == nil {
		errs = append(errs, fmt.Errorf("checkpoint store not set (call SetStore)"))
	}
	if s.graph == nil {
		errs = append(errs, fmt.Errorf("agent graph not set (call SetGraph)"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("httpserver: wiring incomplete: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.engine.Use(securityHeaders())

	s.engine.GET("/health", s.healthHandler)

	s.engine.POST("/threads", s.createThreadHandler)
	s.engine.GET("/threads", s.listThreadsHandler)
	s.engine.DELETE("/threads/:id", s.deleteThreadHandler)
	s.engine.GET("/threads/:id/messages", s.getMessagesHandler)

	s.engine.POST("/chat", s.chatHandler)
	s.engine.POST("/chat/stream", s.chatStreamHandler)

	s.engine.GET("/debug/caches", s.debugCachesHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener. Used
// by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health (spec.md §6 "{status:\"ok\"}").
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// debugCachesHandler handles GET /debug/caches (SPEC_FULL.md supplemented
// feature #3). Returns an empty object, not an error, when no registry is
// wired — this endpoint is ops-only and never gates request handling.
func (s *Server) debugCachesHandler(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.registry.All())
}

// requestContext derives a context bounded by s.requestTimeout from the
// incoming request (spec.md §5 "Cancellation & timeouts": "Individual
// upstream calls have their own timeouts; cancellation at the server
// level must unblock them").
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.requestTimeout)
}

package api

import (
	"log/slog"
	"net/http"

	"codexrag/internal/config"
	"codexrag/internal/ingest"
	"codexrag/internal/metrics"
	"codexrag/internal/rag"
	"codexrag/internal/vectorstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for codexrag.
type Server struct {
	router       chi.Router
	orchestrator *ingest.Orchestrator
	rag          *rag.Service
	store        *vectorstore.Client
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *ingest.Orchestrator, ragSvc *rag.Service, store *vectorstore.Client, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		rag:          ragSvc,
		store:        store,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(MetricsMiddleware(s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/v1/rag/query", s.handleQuery)
		r.Post("/api/v1/rag/query-llm-only", s.handleQueryLLMOnly)

		r.Post("/api/ingest", s.handleIngestSection)
		r.Post("/api/ingest/upload", s.handleIngestUpload)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

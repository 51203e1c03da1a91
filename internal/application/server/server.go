// Package server provides the HTTP API over the collection, ingest and
// query services.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ersonp/codex-core/internal/domain/ports"
	"github.com/ersonp/codex-core/internal/domain/services"
	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

// requestTimeout bounds a single request including LLM round-trips.
const requestTimeout = 120 * time.Second

// Server is the HTTP server for the codex API.
type Server struct {
	collections *services.CollectionService
	ingest      *services.IngestService
	query       *services.QueryService
	vectors     ports.VectorStore
	llm         ports.LLM
	defaultColl string
	config      *config.ServerConfig
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies. defaultColl is the
// collection targeted by the bare /query endpoint.
func NewServer(
	collections *services.CollectionService,
	ingest *services.IngestService,
	query *services.QueryService,
	vectors ports.VectorStore,
	llm ports.LLM,
	defaultColl string,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		collections: collections,
		ingest:      ingest,
		query:       query,
		vectors:     vectors,
		llm:         llm,
		defaultColl: defaultColl,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/query", s.handleQueryDefault)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.handleCollectionsList)
		r.Post("/", s.handleCollectionCreate)

		r.Route("/{name}", func(r chi.Router) {
			r.Delete("/", s.handleCollectionDelete)
			r.Post("/rename", s.handleCollectionRename)
			r.Post("/query", s.handleQuery)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.handleDocumentsList)
				r.Post("/", s.handleDocumentsUpload)
				r.Put("/", s.handleDocumentsUpdate)
				r.Delete("/", s.handleDocumentsDelete)
			})
		})
	})

	return r
}

// requestLogger logs one line per request: method, path, status, duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

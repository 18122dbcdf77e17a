package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MJE43/pf-fairness-engine/internal/fairness"
	"github.com/MJE43/pf-fairness-engine/internal/store"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// TokenCache stores verification tokens by record ID. *cache.TokenCache satisfies it.
type TokenCache interface {
	Put(ctx context.Context, id uuid.UUID, token string) error
	Get(ctx context.Context, id uuid.UUID) (string, error)
	Ping(ctx context.Context) error
}

// Server handles HTTP requests
type Server struct {
	engine         *fairness.Engine
	db             store.DB
	cache          TokenCache
	errorHandler   *ErrorHandler
	logger         *log.Logger
	requestTimeout time.Duration
	startTime      time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists generated records. Without one, record lookups return 503.
func WithStore(db store.DB) Option {
	return func(s *Server) { s.db = db }
}

// WithCache caches verification tokens.
func WithCache(c TokenCache) Option {
	return func(s *Server) { s.cache = c }
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// NewServer creates a new API server
func NewServer(engine *fairness.Engine, logger *log.Logger, opts ...Option) *Server {
	logger = logger.WithPrefix("api")
	s := &Server{
		engine:         engine,
		errorHandler:   NewErrorHandler(logger),
		logger:         logger,
		requestTimeout: 10 * time.Second,
		startTime:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("api server created",
		"games", len(engine.Registry().List()),
		"derivation", engine.Derivation(),
		"store", s.db != nil,
		"cache", s.cache != nil,
	)
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", s.handleListGames)
		r.Post("/results", s.handleGenerate)
		r.Get("/results", s.handleListRecords)
		r.Get("/results/{id}", s.handleGetRecord)
		r.Post("/verify", s.handleVerify)
		r.Post("/verify/token", s.handleVerifyToken)
		r.Post("/replay", s.handleReplay)
	})

	return r
}

func (s *Server) getStartTime() time.Time { return s.startTime }

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

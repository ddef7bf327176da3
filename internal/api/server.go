// Package api serves the transliteration parser and its lookup store over
// HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/FocuswithJustin/TabletATF/internal/cache"
	"github.com/FocuswithJustin/TabletATF/internal/config"
	"github.com/FocuswithJustin/TabletATF/internal/logging"
	"github.com/FocuswithJustin/TabletATF/internal/store"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server holds the shared state of the HTTP handlers.
type Server struct {
	cfg      *config.Config
	store    *store.Store          // nil when no lookup database is configured
	glossary *cache.CachedGlossary // nil when store is nil
	hub      *Hub
	limiter  *RateLimiter
	started  time.Time
}

// New creates a Server. st may be nil, in which case the lookup endpoints
// answer 503.
func New(cfg *config.Config, st *store.Store) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		hub:     NewHub(),
		started: time.Now(),
	}
	if st != nil {
		s.glossary = cache.NewCachedGlossary(st, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	if cfg.Limit.RequestsPerMinute > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.Limit.RequestsPerMinute,
			BurstSize:         cfg.Limit.Burst,
		})
	}
	return s
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/api/corpus", s.handleCorpus)
	mux.HandleFunc("/api/tokenize", s.handleTokenize)
	mux.HandleFunc("/api/normalize", s.handleNormalize)
	mux.HandleFunc("/api/xpath", s.handleXPath)
	mux.HandleFunc("/api/gloss", s.handleGloss)
	mux.HandleFunc("/api/translation", s.handleTranslation)
	mux.HandleFunc("/api/composite", s.handleComposite)
	mux.Handle("/api/import/", s.requireAPIKey(http.HandlerFunc(s.handleImport)))
	mux.HandleFunc("/api/ws/parse", s.handleWSParse)
	mux.HandleFunc("/api/ws/events", s.handleWSEvents)

	return mux
}

// Handler returns the routes wrapped in the middleware chain:
// logging, CORS, body limit and, when enabled, rate limiting.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	handler = http.MaxBytesHandler(handler, s.cfg.Server.MaxBodyBytes)

	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", s.cfg.Limit.RequestsPerMinute,
			"burst_size", s.cfg.Limit.Burst)
	}

	origins := s.cfg.CORS.Origins()
	handler = cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", APIKeyHeader, logging.RequestIDHeader},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		MaxAge:           s.cfg.CORS.MaxAge,
		AllowCredentials: false,
	}).Handler(handler)
	if len(origins) == 1 && origins[0] == "*" {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*) - consider restricting for production")
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(origins))
	}

	return logging.CombinedMiddleware(handler)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	logging.ServerStartup("rest_api", "http", s.cfg.Server.Port,
		"websocket_protocol", "ws",
		"store", s.store != nil,
		"imports", s.cfg.Auth.APIKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logging.Info("server stopped")
	return nil
}

// Package web serves the moodify JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ClientURL       string // allowed CORS origin
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (cfg *ServerConfig) setDefaults() {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

// Server is the HTTP server for the API.
type Server struct {
	router          chi.Router
	server          *http.Server
	handlers        *Handlers
	logger          zerolog.Logger
	clientURL       string
	shutdownTimeout time.Duration
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, logger zerolog.Logger, handlers *Handlers) *Server {
	cfg.setDefaults()

	router := chi.NewRouter()

	s := &Server{
		router:          router,
		handlers:        handlers,
		logger:          logger,
		clientURL:       cfg.ClientURL,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	// Configure middleware
	s.setupMiddleware()

	// Configure routes
	s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(hlog.NewHandler(s.logger))
	s.router.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	s.router.Use(hlog.AccessHandler(accessLog))
	s.router.Use(recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.clientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.NotFound(notFound)
	s.router.MethodNotAllowed(methodNotAllowed)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)
		r.Get("/moods", s.handlers.Moods)
		r.Get("/recommendations", s.handlers.Recommendations)
		r.Get("/search", s.handlers.Search)

		r.Route("/mood", func(r chi.Router) {
			r.Post("/analyze-text", s.handlers.AnalyzeText)
			r.Post("/analyze-voice", s.handlers.AnalyzeVoice)
			r.Post("/analyze-face", s.handlers.AnalyzeFace)
			r.Get("/history", s.handlers.History)
			r.Get("/stats", s.handlers.Stats)
			r.Get("/voice-clusters", s.handlers.VoiceClusters)
		})

		// Provider-scoped aliases used by older clients.
		r.Route("/spotify", func(r chi.Router) {
			r.Get("/moods", s.handlers.Moods)
			r.Get("/recommendations", s.handlers.Recommendations)
			r.Get("/search", s.handlers.Search)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully once ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for cancellation or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down server...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

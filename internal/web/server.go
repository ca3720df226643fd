package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/config"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/web/middleware"
)

// Server represents the relay web server
type Server struct {
	config     *config.Config
	analyzer   *ai.Analyzer
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server. /api/v1/people analyzes through the
// same per-request upstream client as /analyze.
func NewServer(cfg *config.Config) *Server {
	r := chi.NewRouter()

	timeout := cfg.Analysis.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultAnalysisTimeout
	}

	pricing := cfg.GetModelPricing(cfg.Gemini.Model)
	s := &Server{
		config: cfg,
		analyzer: ai.NewAnalyzer(ai.NewUpstreamTransport(middleware.RequestUpstream{}, cfg.Gemini.Model), ai.Options{
			Locale:  ai.LocaleFor(cfg.Analysis.Language),
			Timeout: timeout,
			Pricing: ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
		}),
		router: r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(timeout + constants.RequestTimeoutSlack))
	r.Use(middleware.CORS())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: timeout + 2*constants.RequestTimeoutSlack,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting relay on %s (model %s)", s.httpServer.Addr, s.config.Gemini.Model)
	if s.config.Gemini.APIKey == "" {
		log.Printf("Warning: GEMINI_API_KEY is not set, /analyze and /api/v1/people will answer 500")
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down relay...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Analyzer returns the analyzer behind /api/v1/people, for usage reporting.
func (s *Server) Analyzer() *ai.Analyzer {
	return s.analyzer
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

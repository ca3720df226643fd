package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-insight/internal/web/handlers"
	"github.com/kozaktomas/face-insight/internal/web/middleware"
	"github.com/kozaktomas/face-insight/internal/web/static"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config)
	peopleHandler := handlers.NewPeopleHandler(s.analyzer)

	s.router.MethodNotAllowed(handlers.MethodNotAllowed)

	s.router.Get("/health", handlers.HealthCheck)
	s.router.Get("/config", configHandler.Get)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// Upstream calls: the credential is resolved per request.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.WithUpstreamClient(s.config))
		r.Post("/analyze", handlers.Relay)
		r.Post("/api/analyze", handlers.Relay)
		r.Post("/api/v1/people", peopleHandler.Analyze)
	})

	// Embedded mobile page. No catch-all route: it would shadow the 405 on /analyze.
	s.router.With(middleware.SecurityHeaders()).Get("/", s.servePage)
	s.router.With(middleware.SecurityHeaders()).Get("/index.html", s.servePage)
}

// servePage serves a file from the embedded dist directory
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if !static.HasDist() {
		http.NotFound(w, r)
		return
	}

	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := static.GetFileSystem().Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(path))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	}
	return "application/octet-stream"
}

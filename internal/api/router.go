package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Dashboard contract: every endpoint answers GET and POST.
	dashboard := map[string]http.HandlerFunc{
		"/":            s.handleIdentify,
		"/search":      s.handleSearch,
		"/query":       s.handleQuery,
		"/annotations": s.handleEmptyList,
		"/tag-keys":    s.handleEmptyList,
		"/tag-values":  s.handleEmptyList,
	}
	for path, handler := range dashboard {
		r.Get(path, handler)
		r.Post(path, handler)
	}

	r.Get("/health", s.handleHealth)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	return r
}

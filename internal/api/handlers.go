package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/query"
)

// healthCheckTimeout bounds the store ping behind /health.
const healthCheckTimeout = 3 * time.Second

// identifyResponse is the body of the root endpoint.
type identifyResponse struct {
	Message string `json:"message"`
}

// handleIdentify confirms the datasource is reachable.
func (s *Server) handleIdentify(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, identifyResponse{Message: "Hello! API is working!"})
}

// handleSearch lists active source names. Any request body is ignored.
func (s *Server) handleSearch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.searcher.Search())
}

// handleQuery decodes a query request and answers it from the store.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, query.ErrInvalidTargetType) {
			writeBadRequest(w, err.Error())
			return
		}
		writeBadRequest(w, "invalid JSON body")
		return
	}

	results, err := s.translator.Query(r.Context(), req)
	switch {
	case errors.Is(err, query.ErrInvalidRange):
		writeBadRequest(w, err.Error())
		return
	case err != nil:
		s.logger.Error("query failed",
			"error", err,
			"targets", len(req.Targets),
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleEmptyList answers annotations, tag-keys and tag-values, which have
// no backing data.
func (s *Server) handleEmptyList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.store.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:  "unavailable",
				Version: s.version,
				Error:   "store unreachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

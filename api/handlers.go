package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/poiesic/assessor/catalog"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/recommend"
)

const maxBodyBytes = 1 << 20

// Service is the engine surface the handlers depend on.
type Service interface {
	Recommend(ctx context.Context, query string, spec *core.FilterSpec) ([]*core.ScoredCandidate, error)
	Catalog() *catalog.Store
	ModelID() string
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "request body must be a JSON object")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, CodeInvalidQuery, "query must not be empty")
		return
	}

	store := s.service.Catalog()
	if store.Len() == 0 {
		s.logger.Warn("recommend requested with empty catalog", "source", store.Source(), "err", store.Err())
		respondError(w, http.StatusServiceUnavailable, CodeNoData, "assessment catalog is not available")
		return
	}

	results, err := s.service.Recommend(r.Context(), req.Query, req.FilterSpec())
	if err != nil {
		s.respondRecommendError(w, r, err)
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, CodeNoRecommendations, "No recommendations found")
		return
	}

	respondJSON(w, http.StatusOK, &RecommendResponse{
		RecommendedAssessments: core.NewRecommendations(results),
	})
}

func (s *Server) respondRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidQuery):
		respondError(w, http.StatusBadRequest, CodeInvalidQuery, "query must not be empty")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("recommend timed out", "request_id", requestID(r), "err", err)
		respondError(w, http.StatusGatewayTimeout, CodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
	case errors.Is(err, recommend.ErrQueryEmbedding):
		s.logger.Error("query embedding failed", "request_id", requestID(r), "err", err)
		respondError(w, http.StatusBadGateway, CodeEmbeddingFailed, "embedding service unavailable")
	case catalog.IsDataError(err):
		respondError(w, http.StatusServiceUnavailable, CodeNoData, "assessment catalog is not available")
	default:
		s.logger.Error("recommend failed", "request_id", requestID(r), "err", err)
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	store := s.service.Catalog()
	resp := &HealthResponse{
		Status:         "healthy",
		CatalogRecords: store.Len(),
		Quarantined:    store.Quarantined(),
		Model:          s.service.ModelID(),
	}
	if store.Degraded() {
		resp.Status = "degraded"
		if err := store.Err(); err != nil {
			resp.CatalogError = err.Error()
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/poiesic/assessor/core"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidQuery      = "INVALID_QUERY"
	CodeNoRecommendations = "NO_RECOMMENDATIONS"
	CodeEmbeddingFailed   = "EMBEDDING_FAILED"
	CodeNoData            = "NO_DATA"
	CodeTimeout           = "TIMEOUT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
)

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	RecommendedAssessments []core.Recommendation `json:"recommended_assessments"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	CatalogRecords int    `json:"catalog_records"`
	Quarantined    int    `json:"quarantined"`
	Model          string `json:"model"`
	CatalogError   string `json:"catalog_error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "status", status, "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

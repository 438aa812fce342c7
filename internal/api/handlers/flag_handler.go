package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zura-health/orflow/backend/internal/application/services"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	apperrors "github.com/zura-health/orflow/backend/pkg/errors"
)

// FlagHandler handles flag-related HTTP requests
type FlagHandler struct {
	evaluationService *services.FlagEvaluationService
}

// NewFlagHandler creates a new flag handler
func NewFlagHandler(evaluationService *services.FlagEvaluationService) *FlagHandler {
	return &FlagHandler{
		evaluationService: evaluationService,
	}
}

// EvaluateRequest is the body of POST /api/flags/evaluate
type EvaluateRequest struct {
	FacilityID string `json:"facility_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// EvaluateFlags handles POST /api/flags/evaluate
func (h *FlagHandler) EvaluateFlags(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.evaluationService.EvaluateFacilityRange(r.Context(), req.FacilityID, req.From, req.To)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// ListFlags handles GET /api/flags
func (h *FlagHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.CaseFlagFilter{
		CaseID:   query.Get("case_id"),
		Severity: query.Get("severity"),
		Limit:    parseIntParam(query.Get("limit"), 50),
		Offset:   parseIntParam(query.Get("offset"), 0),
	}

	flags, err := h.evaluationService.ListFlags(r.Context(), query.Get("facility_id"), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"flags": flags,
		"count": len(flags),
	})
}

func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

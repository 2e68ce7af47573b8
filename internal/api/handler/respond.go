package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tokenstd/revert-registry/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
// A ConformanceError additionally carries the violation list in the body so
// clients see exactly which rules the declaration broke.
func mapError(w http.ResponseWriter, err error) {
	var ce *domain.ConformanceError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCollision),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrNotCancellable):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ce):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"name":       ce.Name,
			"violations": ce.Violations,
		})
	case errors.Is(err, domain.ErrEmptyDeclaration),
		errors.Is(err, domain.ErrAmbiguousDeclaration),
		errors.Is(err, domain.ErrMissingSubject),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrEmptyCheck),
		errors.Is(err, domain.ErrEmptyJob),
		errors.Is(err, domain.ErrBatchEmpty),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidCallback):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidSelector):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

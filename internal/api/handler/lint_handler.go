package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/tokenstd/revert-registry/internal/api/middleware"
	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/service"
)

// LintHandler handles the asynchronous lint job endpoints.
type LintHandler struct {
	svc    *service.RegistryService
	logger *zap.Logger
}

func NewLintHandler(svc *service.RegistryService, logger *zap.Logger) *LintHandler {
	return &LintHandler{svc: svc, logger: logger}
}

// Submit handles POST /api/v1/jobs
//
// @Summary     Submit an asynchronous lint job
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Param       body  body      domain.SubmitJobRequest  true  "Job payload"
// @Success     202   {object}  domain.LintJob
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/jobs [post]
func (h *LintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	job, err := h.svc.SubmitJob(r.Context(), req)
	if err != nil {
		h.logger.Warn("submit job failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, job)
}

// GetByID handles GET /api/v1/jobs/{id}
//
// @Summary  Get a lint job and its findings
// @Tags     jobs
// @Produce  json
// @Param    id   path      string  true  "Job UUID"
// @Success  200  {object}  domain.JobReport
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/jobs/{id} [get]
func (h *LintHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Cancel handles DELETE /api/v1/jobs/{id}
//
// @Summary  Cancel a pending or queued lint job
// @Tags     jobs
// @Param    id   path      string  true  "Job UUID"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Failure  409  {object}  map[string]string
// @Router   /api/v1/jobs/{id} [delete]
func (h *LintHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.CancelJob(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

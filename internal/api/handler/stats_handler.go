package handler

import (
	"net/http"

	"github.com/tokenstd/revert-registry/internal/service"
)

// StatsHandler serves a human-readable JSON operational snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type StatsHandler struct {
	svc *service.RegistryService
}

func NewStatsHandler(svc *service.RegistryService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/v1/stats
//
// @Summary  Registration counts, job counts and live queue depths
// @Tags     stats
// @Produce  json
// @Success  200  {object}  domain.Stats
// @Router   /api/v1/stats [get]
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to assemble stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

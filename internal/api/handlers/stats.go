package handlers

import (
	"net/http"

	"github.com/paysentinel/sentinel/internal/service"
)

type StatsHandler struct {
	svc *service.DisputeService
}

func NewStatsHandler(svc *service.DisputeService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Get is GET /stats: decision counts and money held at risk.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

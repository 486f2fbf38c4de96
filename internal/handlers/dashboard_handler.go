package handlers

import (
	"log"
	"net/http"

	"github.com/findit/backend/internal/services"
)

type DashboardHandler struct {
	engine *services.MatchEngine
}

func NewDashboardHandler(engine *services.MatchEngine) *DashboardHandler {
	return &DashboardHandler{engine: engine}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.DashboardStats(r.Context())
	if err != nil {
		log.Printf("[dashboard] stats: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

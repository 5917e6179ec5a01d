package handler

import (
	"net/http"

	"github.com/lemonqwest/lemonqwest/internal/service"
)

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(psvc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: psvc}
}

// Daily returns the member's completion ratio for today's task set.
// A day with no relevant tasks reports 1.0.
func (h *ProgressHandler) Daily(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	progress, err := h.progressService.Daily(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"daily_progress": progress})
}

package handler

import (
	"net/http"

	"github.com/lemonqwest/lemonqwest/internal/service"
)

type AchievementHandler struct {
	achievementService *service.AchievementService
}

func NewAchievementHandler(asvc *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: asvc}
}

// ListForUser returns every achievement type with the member's progress,
// zero-progress rows included.
func (h *AchievementHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	views, err := h.achievementService.ListForUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

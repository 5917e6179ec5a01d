package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lemonqwest/lemonqwest/internal/store"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, logger: logger}
}

var (
	validThemes = map[string]bool{"lemon": true, "classic": true}
	validModes  = map[string]bool{"light": true, "dark": true, "system": true}
)

func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.settingsStore.GetThemeSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get theme settings")
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeSelected string `json:"theme_selected"`
		ThemeMode     string `json:"theme_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ThemeSelected != "" {
		if !validThemes[req.ThemeSelected] {
			writeError(w, http.StatusBadRequest, "unknown theme")
			return
		}
		if err := h.settingsStore.Set("theme_selected", req.ThemeSelected); err != nil {
			h.logger.Error("set theme", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save theme")
			return
		}
	}
	if req.ThemeMode != "" {
		if !validModes[req.ThemeMode] {
			writeError(w, http.StatusBadRequest, "unknown theme mode")
			return
		}
		if err := h.settingsStore.Set("theme_mode", req.ThemeMode); err != nil {
			h.logger.Error("set theme mode", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save theme mode")
			return
		}
	}

	theme, err := h.settingsStore.GetThemeSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get theme settings")
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

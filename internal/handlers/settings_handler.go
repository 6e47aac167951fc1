package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"becomebetter/internal/service"
)

// SettingsHandler serves the user's preferences
type SettingsHandler struct {
	settingsService *service.SettingsService
	logger          *zap.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

// GetSettings returns the stored settings or the defaults
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	settings, err := h.settingsService.GetSettings(user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// UpdateSettings merges the submitted fields into the stored settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.SettingsInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	settings, err := h.settingsService.UpdateSettings(user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

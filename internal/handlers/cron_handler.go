package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"go.uber.org/zap"

	"becomebetter/internal/service"
)

// CronHandler lets an external scheduler trigger the reminder sweep
type CronHandler struct {
	reminders *service.ReminderService
	secret    string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCronHandler creates a cron handler. An empty secret disables the endpoint.
func NewCronHandler(reminders *service.ReminderService, secret string, logger *zap.Logger) *CronHandler {
	return &CronHandler{reminders: reminders, secret: secret, logger: logger, now: time.Now}
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	expected := "Bearer " + h.secret
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(expected)) == 1
}

// Reminders runs one reminder sweep for the current minute
func (h *CronHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	result, err := h.reminders.Run(r.Context(), h.now())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

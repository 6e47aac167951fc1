package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"becomebetter/internal/service"
	"becomebetter/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondWithError writes {"error": userMsg}. err is logged, never sent.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg string, err error) {
	if err != nil {
		if status >= http.StatusInternalServerError {
			logger.Error(userMsg, zap.Int("status", status), zap.Error(err))
		} else {
			logger.Debug(userMsg, zap.Int("status", status), zap.Error(err))
		}
	}
	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// writeServiceError maps service and validation errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr validation.ValidationError
	var insufficient *service.InsufficientDataError
	var limited *service.InsightRateLimitError

	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.As(err, &insufficient):
		respondWithJSON(w, http.StatusBadRequest, map[string]any{
			"error":        fmt.Sprintf("Minimum %d days of data required", insufficient.Required),
			"daysRequired": insufficient.Required,
			"daysProvided": insufficient.Provided,
		})
	case errors.As(err, &limited):
		respondWithJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":         fmt.Sprintf("Maximum %d insight(s) per day allowed", limited.Limit),
			"nextAvailable": limited.NextAvailable,
		})
	case errors.Is(err, service.ErrInsightFailed):
		respondWithError(w, logger, http.StatusInternalServerError, "Failed to generate insight. Please try again later.", err)
	case errors.Is(err, service.ErrGoalNotFound):
		respondWithError(w, logger, http.StatusNotFound, ErrGoalNotFoundMsg, err)
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, logger, http.StatusNotFound, "User not found", err)
	case errors.Is(err, service.ErrFutureDate), errors.Is(err, service.ErrInvalidDate):
		respondWithError(w, logger, http.StatusBadRequest, capitalize(err.Error()), err)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, logger, http.StatusConflict, "User already exists", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, logger, http.StatusUnauthorized, "Invalid email or password", err)
	case errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrResetTokenUsed),
		errors.Is(err, service.ErrResetTokenExpired):
		respondWithError(w, logger, http.StatusBadRequest, capitalize(err.Error()), err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"becomebetter/internal/models"
	"becomebetter/internal/service"
	"becomebetter/internal/validation"
)

// GuidanceHandler serves the goal-setting questions and title suggestions.
// Both are static lookups and need no session.
type GuidanceHandler struct {
	logger *zap.Logger
}

// NewGuidanceHandler creates a new guidance handler
func NewGuidanceHandler(logger *zap.Logger) *GuidanceHandler {
	return &GuidanceHandler{logger: logger}
}

// Questions returns the reflection questions for a category and difficulty
func (h *GuidanceHandler) Questions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Category   models.Category   `json:"category"`
		Difficulty models.Difficulty `json:"difficulty"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.ValidateDifficulty(in.Difficulty); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	questions := service.GenerateGoalQuestions(in.Category, in.Difficulty)
	respondWithJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// Suggestions proposes a category and icon for a goal title. The suggestion
// is null when no keyword matches.
func (h *GuidanceHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestion := service.SuggestForTitle(r.URL.Query().Get("title"))
	respondWithJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}

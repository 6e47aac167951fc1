package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"becomebetter/internal/service"
)

// GoalHandler serves goal CRUD, daily updates, streaks and insights
type GoalHandler struct {
	goalService    *service.GoalService
	insightService *service.InsightService
	logger         *zap.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *service.GoalService, insightService *service.InsightService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		goalService:    goalService,
		insightService: insightService,
		logger:         logger,
	}
}

// goalID parses the {id} path segment. Malformed ids are reported as not found.
func (h *GoalHandler) goalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, h.logger, http.StatusNotFound, ErrGoalNotFoundMsg, nil)
		return 0, false
	}
	return id, true
}

// ListGoals returns the user's active goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goals, err := h.goalService.ListGoals(user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// CreateGoal adds a goal
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.CreateGoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	goal, err := h.goalService.CreateGoal(user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"goal": goal})
}

// GetGoal returns a goal with its recent updates
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	detail, err := h.goalService.GetGoalDetail(user.ID, goalID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"goal": detail})
}

// UpdateGoal applies a partial update
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	var in service.UpdateGoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(user.ID, goalID, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

// DeleteGoal deactivates a goal; its history is kept
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(user.ID, goalID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Goal deleted successfully"})
}

// LogUpdate records the check-in for one day. A new day answers 201, a
// changed day 200.
func (h *GoalHandler) LogUpdate(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	var in service.LogUpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	update, created, err := h.goalService.LogUpdate(user.ID, goalID, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, map[string]any{"goalUpdate": update})
}

// Streak returns the streak summary of a goal
func (h *GoalHandler) Streak(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	summary, err := h.goalService.Streak(user.ID, goalID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"streak": summary})
}

// Insight returns the cached insight or generates a new one
func (h *GoalHandler) Insight(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	goalID, ok := h.goalID(w, r)
	if !ok {
		return
	}

	result, err := h.insightService.GetInsight(r.Context(), user.ID, goalID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

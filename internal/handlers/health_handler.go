package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Startup steps reported by /health while the server boots.
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepScheduler  = "Starting scheduler"
	StepServer     = "Server ready"
)

// StartupStep is one boot stage
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

// NewStartupStatus creates a status with every step pending
func NewStartupStatus() *StartupStatus {
	names := []string{StepDatabase, StepMigrations, StepServices, StepScheduler, StepServer}
	steps := make([]StartupStep, len(names))
	for i, name := range names {
		steps[i] = StartupStep{Name: name}
	}
	return &StartupStatus{current: "Initializing...", steps: steps}
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress. The server is
// ready once every step has completed.
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
		}
		if s.steps[i].Completed {
			completed++
		}
	}
	s.progress = completed * 100 / len(s.steps)
	s.ready = completed == len(s.steps)
}

type healthResponse struct {
	Status   string        `json:"status"`
	Ready    bool          `json:"ready"`
	Current  string        `json:"current,omitempty"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports boot progress and database reachability
type HealthHandler struct {
	status *StartupStatus
	db     Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(status *StartupStatus, db Pinger) *HealthHandler {
	return &HealthHandler{status: status, db: db}
}

// Health answers 200 when the server is ready and the database responds,
// 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.status.mu.RLock()
	resp := healthResponse{
		Ready:    h.status.ready,
		Current:  h.status.current,
		Progress: h.status.progress,
		Steps:    append([]StartupStep(nil), h.status.steps...),
	}
	h.status.mu.RUnlock()

	if !resp.Ready {
		resp.Status = "starting"
		respondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Error = "database connection failed"
		respondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status = "healthy"
	resp.Current = ""
	resp.Steps = nil
	respondWithJSON(w, http.StatusOK, resp)
}

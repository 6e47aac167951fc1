package handlers

import "net/http"

// Handlers groups every HTTP handler mounted by RegisterRoutes
type Handlers struct {
	Auth     *AuthHandler
	Goals    *GoalHandler
	Settings *SettingsHandler
	Guidance *GuidanceHandler
	Cron     *CronHandler
	Health   *HealthHandler
	// Metrics is mounted at /metrics when set; callers wrap it in BasicAuth
	Metrics http.Handler
}

// RegisterRoutes mounts the JSON API on mux
func RegisterRoutes(mux *http.ServeMux, mw *Middleware, h Handlers) {
	auth := func(next http.HandlerFunc) http.HandlerFunc { return mw.RequireAuth(next) }
	write := func(next http.HandlerFunc) http.HandlerFunc { return mw.RequireAuth(mw.CSRFProtect(next)) }

	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", mw.RateLimit(h.Auth.ForgotPassword))
	mux.HandleFunc("GET /api/auth/verify-reset-token", mw.RateLimit(h.Auth.VerifyResetToken))
	mux.HandleFunc("POST /api/auth/reset-password", mw.RateLimit(h.Auth.ResetPassword))
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)

	// Goal-setting guidance
	mux.HandleFunc("POST /api/goals/questions", h.Guidance.Questions)
	mux.HandleFunc("GET /api/goals/suggestions", h.Guidance.Suggestions)

	// External scheduler
	mux.HandleFunc("GET /api/cron/reminders", h.Cron.Reminders)

	// Signed-in user
	mux.HandleFunc("GET /api/me", auth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/onboarding", write(h.Auth.Onboarding))

	// Goals
	mux.HandleFunc("GET /api/goals", auth(h.Goals.ListGoals))
	mux.HandleFunc("POST /api/goals", write(h.Goals.CreateGoal))
	mux.HandleFunc("GET /api/goals/{id}", auth(h.Goals.GetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", write(h.Goals.UpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", write(h.Goals.DeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/update", write(h.Goals.LogUpdate))
	mux.HandleFunc("GET /api/goals/{id}/streak", auth(h.Goals.Streak))
	mux.HandleFunc("GET /api/goals/{id}/insights", auth(h.Goals.Insight))

	// Settings
	mux.HandleFunc("GET /api/settings", auth(h.Settings.GetSettings))
	mux.HandleFunc("PUT /api/settings", write(h.Settings.UpdateSettings))
}

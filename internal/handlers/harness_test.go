package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"becomebetter/internal/database"
	"becomebetter/internal/metrics"
	"becomebetter/internal/repository"
	"becomebetter/internal/security"
	"becomebetter/internal/service"
)

const (
	testCSRFSecret = "test-secret-0123456789"
	testCronSecret = "cron-secret"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string, string) (string, error) {
	return "Keep the streak alive.", nil
}

type apiEnv struct {
	db       *database.DB
	handler  http.Handler
	status   *StartupStatus
	registry *prometheus.Registry
}

type apiOptions struct {
	rps   float64
	burst int
}

func newAPIEnv(t *testing.T, opts ...apiOptions) *apiEnv {
	t.Helper()
	opt := apiOptions{rps: 1000, burst: 1000}
	if len(opts) > 0 {
		opt = opts[0]
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("")
	require.NoError(t, err)

	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	email := service.NewDisabledEmailService(logger)
	authService := service.NewAuthService(userRepo, settingsRepo, email, time.Hour, logger)
	goalService := service.NewGoalService(goalRepo, updateRepo, settingsRepo, m, logger)
	insightService := service.NewInsightService(goalRepo, updateRepo, insightRepo, settingsRepo, userRepo, stubGenerator{}, email, m, logger)
	reminderService := service.NewReminderService(settingsRepo, goalRepo, updateRepo, email, m, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	csrf := security.NewCSRFGenerator(testCSRFSecret)
	mw := NewMiddleware(authService, csrf, security.NewRateLimiter(opt.rps, opt.burst), m, logger)

	status := NewStartupStatus()
	mux := http.NewServeMux()
	RegisterRoutes(mux, mw, Handlers{
		Auth:     NewAuthHandler(authService, csrf, nil, "", "http://localhost:3000", logger),
		Goals:    NewGoalHandler(goalService, insightService, logger),
		Settings: NewSettingsHandler(settingsService, logger),
		Guidance: NewGuidanceHandler(logger),
		Cron:     NewCronHandler(reminderService, testCronSecret, logger),
		Health:   NewHealthHandler(status, db),
	})

	return &apiEnv{
		db:       db,
		handler:  mw.Logging(mw.Metrics(mux)),
		status:   status,
		registry: reg,
	}
}

// client carries the session cookie and CSRF token between requests
type client struct {
	env     *apiEnv
	session *http.Cookie
	csrf    string
}

func (e *apiEnv) anonymous() *client {
	return &client{env: e}
}

func (c *client) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil {
		req.AddCookie(c.session)
	}
	if c.csrf != "" {
		req.Header.Set(CSRFHeaderName, c.csrf)
	}

	rec := httptest.NewRecorder()
	c.env.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			if cookie.MaxAge < 0 {
				c.session = nil
			} else {
				c.session = cookie
			}
		}
	}
	return rec
}

// register signs up a user and keeps the session
func (e *apiEnv) register(t *testing.T, email string) *client {
	t.Helper()
	c := e.anonymous()
	rec := c.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":     email,
		"password":  "correct horse",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"age":       36,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.CSRFToken)
	require.NotNil(t, c.session)
	c.csrf = resp.CSRFToken
	return c
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

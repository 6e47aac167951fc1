package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"becomebetter/internal/database"
	"becomebetter/internal/metrics"
	"becomebetter/internal/models"
	"becomebetter/internal/repository"
)

// fakeSender records every email instead of calling SES
type fakeSender struct {
	mu   sync.Mutex
	sent []*sesv2.SendEmailInput
	err  error
}

func (f *fakeSender) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSender) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.sent {
		out = append(out, aws.ToString(in.Content.Simple.Subject.Data))
	}
	return out
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.sent {
		out = append(out, in.Destination.ToAddresses...)
	}
	return out
}

// fakeGenerator returns a canned insight
type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

var errBoom = errors.New("boom")

type testEnv struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	settingsRepo *repository.SettingsRepository
	goalRepo     *repository.GoalRepository
	updateRepo   *repository.UpdateRepository
	insightRepo  *repository.InsightRepository
	sender       *fakeSender
	email        *EmailService
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	logger       *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("")
	require.NoError(t, err)

	logger := zap.NewNop()
	sender := &fakeSender{}
	reg := prometheus.NewRegistry()
	return &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		goalRepo:     repository.NewGoalRepository(db),
		updateRepo:   repository.NewUpdateRepository(db),
		insightRepo:  repository.NewInsightRepository(db),
		sender:       sender,
		email:        NewEmailServiceWithSender(logger, sender, "noreply@example.com", "Become Better", "https://app.example.com/", false),
		metrics:      metrics.New(reg),
		registry:     reg,
		logger:       logger,
	}
}

func (e *testEnv) goalService(now time.Time) *GoalService {
	s := NewGoalService(e.goalRepo, e.updateRepo, e.settingsRepo, e.metrics, e.logger)
	s.now = func() time.Time { return now }
	return s
}

// createUser stores a user with settings in the given zone
func (e *testEnv) createUser(t *testing.T, email, timezone string) *models.User {
	t.Helper()
	user, err := e.userRepo.CreateUser(&models.User{Email: email, PasswordHash: "x", FirstName: "Sam"})
	require.NoError(t, err)
	settings := models.DefaultSettings(user.ID)
	settings.Timezone = timezone
	require.NoError(t, e.settingsRepo.UpsertSettings(settings))
	return user
}

func (e *testEnv) createGoal(t *testing.T, userID int64, title string, category models.Category) *models.Goal {
	t.Helper()
	goal, err := e.goalRepo.CreateGoal(&models.Goal{
		UserID:     userID,
		Title:      title,
		Category:   category,
		Difficulty: models.DifficultyMedium,
	})
	require.NoError(t, err)
	return goal
}

// counterValue reads a counter from the test registry. label filters on any
// label value; empty matches the first series.
func (e *testEnv) counterValue(t *testing.T, name, label string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func strPtr(s string) *string { return &s }

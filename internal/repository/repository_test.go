package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"becomebetter/internal/database"
	"becomebetter/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("")
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	user, err := NewUserRepository(db).CreateUser(&models.User{Email: email, PasswordHash: "hash", FirstName: "Test"})
	require.NoError(t, err)
	return user
}

func createGoal(t *testing.T, db *database.DB, userID int64, title string) *models.Goal {
	t.Helper()
	goal, err := NewGoalRepository(db).CreateGoal(&models.Goal{
		UserID:     userID,
		Title:      title,
		Category:   models.CategoryHealth,
		Difficulty: models.DifficultyMedium,
	})
	require.NoError(t, err)
	return goal
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	age := 34
	user, err := repo.CreateUser(&models.User{Email: "ada@example.com", PasswordHash: "hash", FirstName: "Ada", Age: &age})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	require.NotNil(t, user.Age)
	assert.Equal(t, 34, *user.Age)

	_, err = repo.CreateUser(&models.User{Email: "ada@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrDuplicate)

	byEmail, err := repo.GetUserByEmail("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetUserByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	newAge := 36
	require.NoError(t, repo.UpdateProfile(user.ID, "Ada", "Lovelace", &newAge, "Countess"))
	updated, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "Countess", updated.Nickname)
	assert.Equal(t, 36, *updated.Age)

	require.NoError(t, repo.LinkOAuthProvider(user.ID, "google", "sub-1"))
	assert.ErrorIs(t, repo.LinkOAuthProvider(user.ID, "google", "sub-2"), ErrOAuthAlreadyLinked)
	linked, err := repo.GetUserByOAuth("google", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, user.ID, linked.ID)
}

func TestSessionsAndResetTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := createUser(t, db, "s@example.com")

	_, err := repo.CreateSession("live", user.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateSession("stale", user.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	deleted, err := repo.DeleteExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	live, err := repo.GetSession("live")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, user.ID, live.UserID)

	require.NoError(t, repo.DeleteUserSessions(user.ID))
	gone, err := repo.GetSession("live")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, repo.CreatePasswordResetToken("tok", user.ID, time.Now().Add(time.Hour)))
	token, err := repo.GetPasswordResetToken("tok")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.False(t, token.Used)
	assert.False(t, token.IsExpired())

	require.NoError(t, repo.MarkPasswordResetTokenAsUsed("tok"))
	token, err = repo.GetPasswordResetToken("tok")
	require.NoError(t, err)
	assert.True(t, token.Used)

	require.NoError(t, repo.DeleteUserPasswordResetTokens(user.ID))
	token, err = repo.GetPasswordResetToken("tok")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	user := createUser(t, db, "settings@example.com")

	none, err := repo.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	defaults, err := repo.CreateDefaultSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "21:00", defaults.ReminderTime)
	assert.Equal(t, "UTC", defaults.Timezone)
	assert.True(t, defaults.EmailNotifications)

	require.NoError(t, repo.UpsertSettings(&models.UserSettings{
		UserID:       user.ID,
		ReminderTime: "07:30",
		Timezone:     "Europe/London",
		DarkMode:     true,
	}))
	got, err := repo.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, defaults.ID, got.ID)
	assert.Equal(t, "07:30", got.ReminderTime)
	assert.Equal(t, "Europe/London", got.Timezone)
	assert.True(t, got.DarkMode)
	assert.False(t, got.EmailNotifications)

	createUser(t, db, "nosettings@example.com")
	all, err := repo.ListUsersWithSettings()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, user.ID, all[0].User.ID)
	assert.Equal(t, "07:30", all[0].Settings.ReminderTime)
}

func TestGoalRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGoalRepository(db)
	user := createUser(t, db, "goals@example.com")
	other := createUser(t, db, "other@example.com")

	first := createGoal(t, db, user.ID, "Run")
	second := createGoal(t, db, user.ID, "Read")
	createGoal(t, db, other.ID, "Not mine")

	assert.True(t, first.IsActive)
	assert.Equal(t, 0, first.UpdateCount)

	goals, err := repo.ListActiveGoals(user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, second.ID, goals[0].ID, "newest first")

	notMine, err := repo.GetGoal(first.ID, other.ID)
	require.NoError(t, err)
	assert.Nil(t, notMine)

	title := "Run 5k"
	ok, err := repo.UpdateGoal(first.ID, user.ID, GoalChanges{Title: &title})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateGoal(first.ID, other.ID, GoalChanges{Title: &title})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeactivateGoal(second.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	goals, err = repo.ListActiveGoals(user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Run 5k", goals[0].Title)

	inactive, err := repo.GetActiveGoal(second.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, inactive)

	stillThere, err := repo.GetGoal(second.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stillThere)
	assert.False(t, stillThere.IsActive)
}

func TestUpdateRepositoryUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewUpdateRepository(db)
	user := createUser(t, db, "updates@example.com")
	goal := createGoal(t, db, user.ID, "Meditate")

	day := time.Date(2024, 6, 15, 4, 0, 0, 0, time.UTC)

	update, created, err := repo.Upsert(goal.ID, user.ID, day, false, "skipped")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, update.Completed)
	assert.True(t, update.Date.Equal(day))

	update, created, err = repo.Upsert(goal.ID, user.ID, day, true, "done after all")
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, update.Completed)
	assert.Equal(t, "done after all", update.Notes)

	_, _, err = repo.Upsert(goal.ID, user.ID, day.AddDate(0, 0, -1), true, "")
	require.NoError(t, err)
	_, _, err = repo.Upsert(goal.ID, user.ID, day.AddDate(0, 0, -2), true, "")
	require.NoError(t, err)

	all, err := repo.ListByGoal(goal.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := repo.ListByGoal(goal.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Date.Equal(day))
	assert.True(t, latest[1].Date.Equal(day.AddDate(0, 0, -1)))

	found, err := repo.GetByGoalAndDate(goal.ID, day.AddDate(0, 0, -2))
	require.NoError(t, err)
	require.NotNil(t, found)

	none, err := repo.GetByGoalAndDate(goal.ID, day.AddDate(0, 0, -10))
	require.NoError(t, err)
	assert.Nil(t, none)

	g, err := NewGoalRepository(db).GetGoal(goal.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, g.UpdateCount)
}

func TestInsightRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewInsightRepository(db)
	user := createUser(t, db, "insights@example.com")
	goal := createGoal(t, db, user.ID, "Save money")

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	none, err := repo.GetLatestValid(goal.ID, user.ID, now)
	require.NoError(t, err)
	assert.Nil(t, none)

	stored, err := repo.CreateInsight(&models.Insight{
		GoalID:          goal.ID,
		UserID:          user.ID,
		Content:         "Keep going",
		VerifiedSources: []string{"https://www.investopedia.com"},
		GeneratedAt:     now,
		ExpiresAt:       now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	cached, err := repo.GetLatestValid(goal.ID, user.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Keep going", cached.Content)
	assert.Equal(t, []string{"https://www.investopedia.com"}, cached.VerifiedSources)

	expired, err := repo.GetLatestValid(goal.ID, user.ID, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, expired)

	count, err := repo.CountGeneratedSince(goal.ID, user.ID, now.Truncate(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountGeneratedSince(goal.ID, user.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

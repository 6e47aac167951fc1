package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"becomebetter/internal/validation"
)

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.userRepo, e.settingsRepo, e.email, 24*time.Hour, e.logger)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:     "  Ada@Example.com ",
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	ctx := context.Background()

	user, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	settings, err := env.settingsRepo.GetSettings(user.ID)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "21:00", settings.ReminderTime)
	assert.Equal(t, []string{"Welcome to Become Better!"}, env.sender.subjects())

	_, err = auth.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = auth.Login("ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login("nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, loggedIn, err := auth.Login("ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	current, err := auth.ValidateSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.NotNil(t, current.LastLogin)

	require.NoError(t, auth.Logout(session.ID))
	_, err = auth.ValidateSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "password"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }, "firstName"},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }, "lastName"},
		{"age too high", func(in *RegisterInput) { in.Age = 151 }, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)
			_, err := auth.Register(context.Background(), in)
			var verr validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	user := env.createUser(t, "exp@example.com", "UTC")

	_, err := env.userRepo.CreateSession("old", user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = auth.ValidateSession("old")
	assert.ErrorIs(t, err, ErrSessionExpired)

	gone, err := env.userRepo.GetSession("old")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	user, err := auth.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	bad := 0
	_, err = auth.CompleteOnboarding(user.ID, ProfileInput{Age: &bad})
	assert.Error(t, err)

	updated, err := auth.CompleteOnboarding(user.ID, ProfileInput{Nickname: "Countess"})
	require.NoError(t, err)
	assert.Equal(t, "Countess", updated.Nickname)
	assert.Equal(t, "Ada", updated.FirstName, "empty fields keep stored values")
	require.NotNil(t, updated.Age)
	assert.Equal(t, 36, *updated.Age)

	_, err = auth.CompleteOnboarding(424242, ProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOAuthLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	ctx := context.Background()

	_, created, err := auth.OAuthLogin(ctx, "google", "sub-1", "New@Example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "new", created.FirstName)
	settings, err := env.settingsRepo.GetSettings(created.ID)
	require.NoError(t, err)
	assert.NotNil(t, settings)

	_, again, err := auth.OAuthLogin(ctx, "google", "sub-1", "new@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	existing, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	_, linked, err := auth.OAuthLogin(ctx, "google", "sub-2", "ada@example.com", "Ada", "L")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)

	_, _, err = auth.OAuthLogin(ctx, "", "", "x@example.com", "", "")
	assert.Error(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	ctx := context.Background()
	user, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	session, _, err := auth.Login("ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, auth.RequestPasswordReset(ctx, "unknown@example.com"))
	require.NoError(t, auth.RequestPasswordReset(ctx, "ada@example.com"))
	assert.Contains(t, env.sender.subjects(), "Reset Your Become Better Password")

	var token string
	require.NoError(t, env.db.QueryRow("SELECT token FROM password_reset_tokens WHERE user_id = ?", user.ID).Scan(&token))

	ok, err := auth.ValidatePasswordResetToken(token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.ValidatePasswordResetToken("bogus")
	require.NoError(t, err)
	assert.False(t, ok)

	var verr validation.ValidationError
	require.ErrorAs(t, auth.ResetPassword(token, "short"), &verr)

	require.NoError(t, auth.ResetPassword(token, "a brand new secret"))
	assert.ErrorIs(t, auth.ResetPassword(token, "another new secret"), ErrResetTokenUsed)
	assert.ErrorIs(t, auth.ResetPassword("bogus", "another new secret"), ErrInvalidResetToken)

	_, err = auth.ValidateSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "reset signs the user out everywhere")

	_, _, err = auth.Login("ada@example.com", "a brand new secret")
	require.NoError(t, err)
}

func TestCleanupExpired(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authService()
	user := env.createUser(t, "cleanup@example.com", "UTC")

	_, err := env.userRepo.CreateSession("stale", user.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.userRepo.CreatePasswordResetToken("old-token", user.ID, time.Now().Add(-time.Hour)))

	n, err := auth.CleanupExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = auth.CleanupExpiredPasswordResetTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

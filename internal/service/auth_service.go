package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"becomebetter/internal/models"
	"becomebetter/internal/repository"
	"becomebetter/internal/security"
	"becomebetter/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrResetTokenUsed     = errors.New("this reset link has already been used")
	ErrResetTokenExpired  = errors.New("this reset link has expired")
	ErrUserNotFound       = errors.New("user not found")
)

const passwordResetTTL = time.Hour

// RegisterInput carries the fields collected at sign-up
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Nickname  string `json:"nickname"`
}

// ProfileInput carries optional onboarding fields; empty values keep the
// stored ones
type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       *int   `json:"age"`
	Nickname  string `json:"nickname"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	settingsRepo    *repository.SettingsRepository
	emailService    *EmailService
	sessionDuration time.Duration
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, settingsRepo *repository.SettingsRepository, emailService *EmailService, sessionDuration time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		settingsRepo:    settingsRepo,
		emailService:    emailService,
		sessionDuration: sessionDuration,
		logger:          logger,
	}
}

// Register creates a new user account with default settings
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("firstName", in.FirstName); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("lastName", in.LastName); err != nil {
		return nil, err
	}
	if err := validation.ValidateAge(in.Age); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	age := in.Age
	user, err := s.userRepo.CreateUser(&models.User{
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Age:          &age,
		Nickname:     strings.TrimSpace(in.Nickname),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.settingsRepo.CreateDefaultSettings(user.ID); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}

	// Welcome mail is best effort
	if err := s.emailService.SendWelcomeEmail(ctx, user.Email, user.DisplayName()); err != nil {
		s.logger.Warn("failed to send welcome email", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	now := time.Now()
	session, err := s.userRepo.CreateSession(security.GenerateSessionID(), userID, now.Add(s.sessionDuration))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.userRepo.UpdateLastLogin(userID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", userID), zap.Error(err))
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// CompleteOnboarding updates the profile of the signed-in user
func (s *AuthService) CompleteOnboarding(userID int64, in ProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if in.Age != nil {
		if err := validation.ValidateAge(*in.Age); err != nil {
			return nil, err
		}
	}

	firstName := orKeep(in.FirstName, user.FirstName)
	lastName := orKeep(in.LastName, user.LastName)
	nickname := orKeep(in.Nickname, user.Nickname)
	age := user.Age
	if in.Age != nil {
		age = in.Age
	}

	if err := s.userRepo.UpdateProfile(userID, firstName, lastName, age, nickname); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(userID)
}

func orKeep(value, current string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return current
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, firstName, lastName string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			if firstName == "" {
				firstName, _, _ = strings.Cut(email, "@")
			}
			newUser, err := s.userRepo.CreateUser(&models.User{
				Email:         email,
				FirstName:     firstName,
				LastName:      lastName,
				OAuthProvider: provider,
				OAuthSubject:  subject,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if _, err := s.settingsRepo.CreateDefaultSettings(newUser.ID); err != nil {
				return nil, nil, fmt.Errorf("failed to create default settings: %w", err)
			}
			if err := s.emailService.SendWelcomeEmail(ctx, newUser.Email, newUser.DisplayName()); err != nil {
				s.logger.Warn("failed to send welcome email", zap.Int64("user_id", newUser.ID), zap.Error(err))
			}
			user = newUser
		}
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// RequestPasswordReset creates a password reset token and sends an email.
// Unknown addresses succeed silently so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	// OAuth-only accounts have no password to reset
	if user.OAuthProvider != "" && user.PasswordHash == "" {
		return nil
	}

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return err
	}

	if err := s.userRepo.DeleteUserPasswordResetTokens(user.ID); err != nil {
		s.logger.Warn("failed to delete old reset tokens", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(passwordResetTTL)); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, user.DisplayName(), token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ValidatePasswordResetToken checks if a reset token is valid
func (s *AuthService) ValidatePasswordResetToken(token string) (bool, error) {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return false, nil
	}
	return true, nil
}

// ResetPassword resets a user's password using a valid token and signs the
// user out everywhere
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil {
		return ErrInvalidResetToken
	}
	if resetToken.Used {
		return ErrResetTokenUsed
	}
	if resetToken.IsExpired() {
		return ErrResetTokenExpired
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return err
	}
	if err := s.userRepo.MarkPasswordResetTokenAsUsed(token); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUserSessions(resetToken.UserID); err != nil {
		return err
	}

	return nil
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens() (int64, error) {
	n, err := s.userRepo.DeleteExpiredPasswordResetTokens()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return n, nil
}

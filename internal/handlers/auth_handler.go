package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"becomebetter/internal/models"
	"becomebetter/internal/security"
	"becomebetter/internal/service"
	"becomebetter/internal/validation"
)

const resetRequestedMessage = "If an account exists with this email, a password reset link has been sent."

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           strings.TrimRight(appBaseURL, "/"),
		logger:               logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs the new user in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	// Auto-login after registration
	session, _, err := h.authService.Login(user.Email, in.Password)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}
	h.startSession(w, r, session, user, http.StatusCreated)
}

// Login handles email and password sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	session, user, err := h.authService.Login(in.Email, in.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.startSession(w, r, session, user, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, session *models.Session, user *models.User, status int) {
	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	respondWithJSON(w, status, sessionResponse{User: newUserView(user), CSRFToken: token})
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", zap.Error(err))
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Signed out"})
}

// Me returns the signed-in user and a CSRF token for state-changing calls
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	token, err := h.csrf.GenerateToken(sessionID)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{User: newUserView(user), CSRFToken: token})
}

// Onboarding stores the profile fields collected after sign-up
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	updated, err := h.authService.CompleteOnboarding(user.ID, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]UserView{"user": newUserView(updated)})
}

// ForgotPassword starts a password reset. The response never reveals
// whether the address has an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid email address", err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), in.Email); err != nil {
		h.logger.Error("password reset request failed", zap.Error(err))
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: resetRequestedMessage})
}

// VerifyResetToken reports whether a reset link is still usable
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Token is required", nil)
		return
	}

	valid, err := h.authService.ValidatePasswordResetToken(token)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}
	if !valid {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid or expired reset token", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ResetPassword sets a new password from a reset link
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}
	if in.Token == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Token is required", nil)
		return
	}

	if err := h.authService.ResetPassword(in.Token, in.Password); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset. Please sign in."})
}

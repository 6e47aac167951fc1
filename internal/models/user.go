package models

import "time"

// User represents an account in the system
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Age           *int
	Nickname      string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLogin     *time.Time
}

// DisplayName is the name used in greetings: the nickname when set,
// otherwise the first name, otherwise the email address.
func (u *User) DisplayName() string {
	switch {
	case u.Nickname != "":
		return u.Nickname
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// HasCompletedOnboarding reports whether the profile fields collected at
// onboarding are present.
func (u *User) HasCompletedOnboarding() bool {
	return u.FirstName != "" && u.LastName != "" && u.Age != nil
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

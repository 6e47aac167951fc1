package handlers

import (
	"time"

	"becomebetter/internal/models"
)

// UserView is the public JSON shape of a user. Credentials and OAuth
// subjects are never serialised.
type UserView struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Nickname      string     `json:"nickname,omitempty"`
	Age           *int       `json:"age,omitempty"`
	DisplayName   string     `json:"displayName"`
	Onboarded     bool       `json:"onboarded"`
	OAuthProvider string     `json:"oauthProvider,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Nickname:      u.Nickname,
		Age:           u.Age,
		DisplayName:   u.DisplayName(),
		Onboarded:     u.HasCompletedOnboarding(),
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt,
		LastLogin:     u.LastLogin,
	}
}

// sessionResponse is returned by every endpoint that signs a user in
type sessionResponse struct {
	User      UserView `json:"user"`
	CSRFToken string   `json:"csrfToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sessions are random UUIDs kept in the sessions table. The browser only ever
// sees the id, in an HttpOnly cookie scoped to the whole site.

// GenerateSessionID returns a fresh session id
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSecureRequest reports whether the request arrived over HTTPS, either
// directly or through a proxy that terminated TLS
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil ||
		strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") ||
		r.URL.Scheme == "https"
}

func siteCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateSessionCookie carries a session id until expires
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	cookie := siteCookie(r, name, value)
	cookie.Expires = expires
	return cookie
}

// CreateDeleteCookie tells the browser to drop the named cookie
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	cookie := siteCookie(r, name, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

package security

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSRFGenerator(t *testing.T) {
	gen := NewCSRFGenerator("0123456789abcdef")

	token, err := gen.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{"matching token", "session-1", token, true},
		{"other session", "session-2", token, false},
		{"tampered token", "session-1", "x" + token[1:], false},
		{"empty token", "session-1", "", false},
		{"empty session", "", token, false},
		{"not hex", "session-1", "zz" + token[2:], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gen.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := gen.GenerateToken(""); !errors.Is(err, ErrNoSession) {
		t.Errorf("GenerateToken(\"\") error = %v, want ErrNoSession", err)
	}

	otherSecret := NewCSRFGenerator("fedcba9876543210")
	if otherSecret.ValidateToken("session-1", token) {
		t.Error("token must not validate under a different secret")
	}
}

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	if IsSecureRequest(plain) {
		t.Error("plain HTTP request reported as secure")
	}

	proxied := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !IsSecureRequest(proxied) {
		t.Error("X-Forwarded-Proto https should be secure")
	}

	shouting := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	shouting.Header.Set("X-Forwarded-Proto", "HTTPS")
	if !IsSecureRequest(shouting) {
		t.Error("X-Forwarded-Proto is case-insensitive")
	}

	direct := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	direct.TLS = &tls.ConnectionState{}
	if !IsSecureRequest(direct) {
		t.Error("TLS request should be secure")
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	expires := time.Now().Add(time.Hour)

	cookie := CreateSessionCookie(r, "session_id", "abc", expires)
	if cookie.Name != "session_id" || cookie.Value != "abc" || !cookie.HttpOnly {
		t.Errorf("unexpected session cookie: %+v", cookie)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}

	deleted := CreateDeleteCookie(r, "session_id")
	if deleted.MaxAge != -1 || deleted.Value != "" || deleted.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected delete cookie: %+v", deleted)
	}
	if !deleted.Expires.Before(time.Now()) {
		t.Errorf("delete cookie expires %v, want a past time", deleted.Expires)
	}

	if GenerateSessionID() == GenerateSessionID() {
		t.Error("GenerateSessionID() should be unique")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request beyond burst should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("token should refill after one second")
	}

	now = now.Add(10 * time.Minute)
	if removed := rl.Cleanup(); removed != 2 {
		t.Errorf("Cleanup() removed %d visitors, want 2", removed)
	}
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseProxyList([]string{"10.0.0.0/8", "192.0.2.1"})
	if err != nil {
		t.Fatalf("ParseProxyList() error = %v", err)
	}

	tests := []struct {
		name       string
		proxies    ProxyList
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", nil, "10.0.0.1:5555", nil, "10.0.0.1"},
		{"no port", nil, "10.0.0.1", nil, "10.0.0.1"},
		{"untrusted peer ignores forwarded", nil, "203.0.113.7:5555", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"untrusted peer ignores real ip", proxies, "203.0.113.7:5555", map[string]string{"X-Real-IP": "198.51.100.4"}, "203.0.113.7"},
		{"trusted peer", proxies, "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "198.51.100.9"}, "198.51.100.9"},
		{"rightmost untrusted hop", proxies, "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"single trusted address", proxies, "192.0.2.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9, 192.0.2.1"}, "203.0.113.9"},
		{"all hops trusted", proxies, "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "10.0.0.3, 10.0.0.2"}, "10.0.0.3"},
		{"trusted real ip", proxies, "10.0.0.1:5555", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := tt.proxies.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseProxyListRejectsGarbage(t *testing.T) {
	for _, entry := range []string{"not-an-ip", "10.0.0.0/99"} {
		if _, err := ParseProxyList([]string{entry}); err == nil {
			t.Errorf("ParseProxyList(%q) should fail", entry)
		}
	}
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(0.0001, 2)

	allowed := 0
	for i := 0; i < 50; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "203.0.113.7:4000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		if rl.Allow(rl.ClientIP(r)) {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed %d of 50 requests from one peer, want 2", allowed)
	}
}

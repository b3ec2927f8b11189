// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
)

// Manager builds the cookies that carry a session token to the browser.
type Manager struct {
	cookieName string
	secure     bool
}

// NewManager creates a cookie manager from the auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	name := cfg.SessionCookieName
	if name == "" {
		name = "session_token"
	}
	return &Manager{
		cookieName: name,
		secure:     cfg.CookieSecure,
	}
}

// Cookie returns a site-wide session cookie expiring together with the
// server-side session.
func (m *Manager) Cookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that makes the browser drop the session.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token returns the session token sent with r, or "" if there is none.
func (m *Manager) Token(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

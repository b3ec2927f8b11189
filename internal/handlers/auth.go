// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/services/auth"
	"codeberg.org/oliverandrich/website/internal/services/session"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for the account endpoints.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *auth.Service, sess *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:     svc,
		sessions: sess,
	}
}

// Register creates an inactive account and sends its activation link.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.auth.Register(ctx, auth.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		BotToken: firstNonEmpty(req.Recaptcha, req.BotToken),
		IP:       clientIP(c),
	})
	if err != nil {
		return err
	}

	msg := i18n.T(ctx, "register_success")
	if !result.Notified {
		msg = i18n.T(ctx, "register_notify_failed")
	}
	return c.JSON(http.StatusCreated, response{Success: true, Message: msg})
}

// Activate exchanges an activation token for an active account. The token
// is read from the query string or the request body.
func (h *AuthHandlers) Activate(c echo.Context) error {
	var req ActivateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		req.Token = c.QueryParam("token")
	}

	ctx := c.Request().Context()
	status, err := h.auth.Activate(ctx, req.Token)
	if err != nil {
		return err
	}

	msg := i18n.T(ctx, "activation_success")
	if status == auth.StatusAlreadyActive {
		msg = i18n.T(ctx, "activation_already_active")
	}
	return c.JSON(http.StatusOK, response{Success: true, Message: msg, Status: status.String()})
}

// Login authenticates the user and sets the session cookie.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	sess, err := h.auth.Login(ctx, auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		BotToken: firstNonEmpty(req.Recaptcha, req.BotToken),
		IP:       clientIP(c),
	})
	if err != nil {
		return err
	}

	c.SetCookie(h.sessions.Cookie(sess.Token, sess.ExpiresAt))
	return c.JSON(http.StatusOK, response{Success: true, Message: i18n.T(ctx, "login_success")})
}

// Logout removes the session and clears the cookie, even when server-side
// cleanup fails.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	warning := h.auth.Logout(ctx, h.sessions.Token(c.Request()))

	c.SetCookie(h.sessions.ClearCookie())
	resp := response{Success: true, Message: i18n.T(ctx, "logout_success")}
	if warning != nil {
		resp.Warning = warning.Localize(ctx)
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckSession reports whether the session cookie names a valid session.
func (h *AuthHandlers) CheckSession(c echo.Context) error {
	ok, err := h.auth.CheckSession(c.Request().Context(), h.sessions.Token(c.Request()))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]bool{"loggedIn": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"loggedIn": ok})
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CredentialsRequest is the body of register and login requests. Password
// length is bounded by the auth service so login failures stay uniform.
type CredentialsRequest struct {
	Email     string `json:"email" form:"email" validate:"max=254"`
	Password  string `json:"password" form:"password"`
	Recaptcha string `json:"g-recaptcha-response" form:"g-recaptcha-response"`
	BotToken  string `json:"bot_token" form:"bot_token"`
}

// ActivateRequest carries the activation token from the query or body.
type ActivateRequest struct {
	Token string `json:"token" query:"token" form:"token"`
}

// CommentRequest is the body of a comment submission.
type CommentRequest struct {
	Email     string `json:"email" form:"email" validate:"max=254"`
	Comment   string `json:"comment" form:"comment" validate:"max=4096"`
	Recaptcha string `json:"g-recaptcha-response" form:"g-recaptcha-response"`
	BotToken  string `json:"bot_token" form:"bot_token"`
}

// firstNonEmpty returns the reCAPTCHA field, falling back to its alias.
func firstNonEmpty(recaptcha, alias string) string {
	if recaptcha != "" {
		return recaptcha
	}
	return alias
}

// bind decodes and validates the request into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

// clientIP prefers the address reported by Cloudflare.
func clientIP(c echo.Context) string {
	if ip := strings.TrimSpace(c.Request().Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	return c.RealIP()
}

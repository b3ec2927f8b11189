// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/services/auth"
	"codeberg.org/oliverandrich/website/internal/services/comment"
	"github.com/labstack/echo/v4"
)

var (
	msgInvalidRequest = i18n.Message{ID: "invalid_request", Default: "Invalid request format."}
	msgConfigError    = i18n.Message{ID: "server_config_error", Default: "Server configuration error [db]."}
	msgUnexpected     = i18n.Message{ID: "server_error", Default: "An unexpected server error occurred."}
)

// response is the JSON envelope for every API reply.
type response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Status  string   `json:"status,omitempty"`
	Warning string   `json:"warning,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// NewErrorHandler returns an echo.HTTPErrorHandler rendering failures as
// {"success":false,"message":...}. Unknown errors are logged and reported
// with a generic message.
func NewErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, c echo.Context) (int, response) {
	ctx := c.Request().Context()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, response{Message: httpMessage(ctx, he.Message)}
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		msg, details := authErr.Localize(ctx)
		return authStatus(authErr.Kind), response{Message: msg, Errors: details}
	}

	var commentErr *comment.Error
	if errors.As(err, &commentErr) {
		return commentStatus(commentErr.Kind), response{Message: commentErr.Localize(ctx)}
	}

	if errors.Is(err, auth.ErrNotConfigured) || errors.Is(err, comment.ErrNotConfigured) {
		slog.Error("server_misconfigured",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return http.StatusInternalServerError, response{Message: msgConfigError.Localize(ctx)}
	}

	slog.Error("unhandled_error",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return http.StatusInternalServerError, response{Message: msgUnexpected.Localize(ctx)}
}

func httpMessage(ctx context.Context, msg any) string {
	switch m := msg.(type) {
	case i18n.Message:
		return m.Localize(ctx)
	case fieldErrors:
		return m.localize(ctx)
	default:
		return fmt.Sprintf("%v", m)
	}
}

func authStatus(kind error) int {
	switch {
	case errors.Is(kind, auth.ErrInvalidInput),
		errors.Is(kind, auth.ErrVerificationFailed),
		errors.Is(kind, auth.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(kind, auth.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(kind, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(kind, auth.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(kind, auth.ErrTokenExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func commentStatus(kind error) int {
	switch {
	case errors.Is(kind, comment.ErrInvalidInput),
		errors.Is(kind, comment.ErrVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(kind, comment.ErrDuplicateComment):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

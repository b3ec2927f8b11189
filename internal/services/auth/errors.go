// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/services/captcha"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrVerificationFailed    = errors.New("bot verification failed")
	ErrEmailInUse            = errors.New("email already in use")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingToken          = errors.New("activation token missing")
	ErrTokenNotFound         = errors.New("activation token not found")
	ErrTokenExpired          = errors.New("activation token expired")
	ErrSessionCreationFailed = errors.New("session creation failed")
	ErrNotConfigured         = errors.New("auth service not configured")
)

// Error is a rejected request. Message is safe to show to the client and
// Kind is one of the sentinel errors above. ID and Data select the
// translation of Message.
type Error struct {
	Kind    error
	ID      string
	Message string
	Data    map[string]any
	Details []i18n.Message
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Localize renders the message and its details in the locale of ctx.
func (e *Error) Localize(ctx context.Context) (string, []string) {
	msg := i18n.TDefault(ctx, e.ID, e.Message, e.Data)
	if len(e.Details) == 0 {
		return msg, nil
	}
	details := make([]string, len(e.Details))
	for i, d := range e.Details {
		details[i] = d.Localize(ctx)
	}
	return msg, details
}

func reject(kind error, id, message string) *Error {
	return &Error{Kind: kind, ID: id, Message: message}
}

var (
	errInvalidCredentials = reject(ErrInvalidCredentials, "invalid_credentials", "Invalid credentials or inactive account.")
	errTokenNotFound      = reject(ErrTokenNotFound, "activation_not_found", "Invalid activation link.")
)

// Warning reports a logout whose server-side cleanup did not complete.
type Warning = i18n.Message

var (
	warnNotConfigured = &Warning{
		ID:      "logout_not_configured",
		Default: "Server configuration error prevents full session cleanup.",
	}
	warnCleanupFailed = &Warning{
		ID:      "logout_cleanup_failed",
		Default: "Server error during session cleanup.",
	}
)

// verificationError turns a failed bot check into a rejection.
func verificationError(res captcha.Result) *Error {
	reason := res.Reason()
	return &Error{Kind: ErrVerificationFailed, ID: reason.ID, Message: reason.Default, Data: reason.Data}
}

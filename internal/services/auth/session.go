// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/website/internal/metrics"
	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/repository"
	"codeberg.org/oliverandrich/website/internal/services/password"
	"codeberg.org/oliverandrich/website/internal/services/token"
)

// maxPasswordLength bounds the input hashed on login.
const maxPasswordLength = 1024

// dummyHash and dummySalt keep unknown-email logins as slow as real ones.
var dummyHash, dummySalt = mustHash("dummy-password-for-timing")

func mustHash(pw string) (string, string) {
	hash, salt, err := password.Hash(pw)
	if err != nil {
		panic(fmt.Sprintf("auth: failed to hash dummy password: %v", err))
	}
	return hash, salt
}

// LoginParams holds the parameters for a login attempt.
type LoginParams struct {
	Email    string
	Password string
	BotToken string
	IP       string
}

// Session is an issued login session. Token is the cookie value.
type Session = models.Session

// Login authenticates the credentials and stores a new session.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, params LoginParams) (*Session, error) {
	session, err := s.login(ctx, params)
	metrics.LoginsTotal.WithLabelValues(resultLabel(err)).Inc()
	return session, err
}

func (s *Service) login(ctx context.Context, params LoginParams) (*Session, error) {
	if s.store == nil || s.verifier == nil {
		slog.Error("login_failed", "reason", "not_configured")
		return nil, ErrNotConfigured
	}

	if params.Email == "" || params.Password == "" || params.BotToken == "" {
		return nil, reject(ErrInvalidInput, "missing_credentials", "Email, password, and reCAPTCHA are required.")
	}
	if !s.validEmail(params.Email) {
		return nil, reject(ErrInvalidInput, "invalid_email_format", "Invalid email format provided.")
	}

	if res := s.verifier.Verify(ctx, params.BotToken, params.IP); !res.Success {
		slog.Info("login_failed", "email", params.Email, "reason", "captcha", "ip", params.IP)
		return nil, verificationError(res)
	}

	if len(params.Password) > maxPasswordLength {
		slog.Warn("login_failed", "email", params.Email, "reason", "password_too_long", "ip", params.IP)
		return nil, errInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = password.Verify(dummyHash, dummySalt, params.Password)
			slog.Warn("login_failed", "email", params.Email, "reason", "user_not_found", "ip", params.IP)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Verify(user.PasswordHash, user.PasswordSalt, params.Password) {
		slog.Warn("login_failed", "email", params.Email, "reason", "invalid_password", "ip", params.IP)
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		slog.Warn("login_failed", "email", params.Email, "reason", "inactive", "ip", params.IP)
		return nil, errInvalidCredentials
	}

	sessionToken, err := s.newToken()
	if err != nil {
		slog.Error("session_create_failed", "user_id", user.ID, "error", err)
		return nil, reject(ErrSessionCreationFailed, "session_create_failed", "Failed to create session. Please try again.")
	}

	session := &Session{
		Token:     sessionToken,
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(s.config.SessionDuration),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		slog.Error("session_create_failed", "user_id", user.ID, "error", err)
		return nil, reject(ErrSessionCreationFailed, "session_create_failed", "Failed to create session. Please try again.")
	}

	slog.Info("login_success", "user_id", user.ID, "email", params.Email, "token_prefix", token.Prefix(sessionToken))
	return session, nil
}

// CheckSession reports whether sessionToken names a valid session. Store
// failures are logged and reported as logged out; only ErrNotConfigured is
// returned.
func (s *Service) CheckSession(ctx context.Context, sessionToken string) (bool, error) {
	if s.store == nil {
		slog.Error("session_check_failed", "reason", "not_configured")
		return false, ErrNotConfigured
	}
	if sessionToken == "" {
		return false, nil
	}

	if _, err := s.store.GetValidSession(ctx, sessionToken, s.now()); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("session_check_failed", "token_prefix", token.Prefix(sessionToken), "error", err)
		}
		return false, nil
	}
	return true, nil
}

// Logout removes the session. It never fails; a non-nil warning reports
// that server-side cleanup did not complete.
func (s *Service) Logout(ctx context.Context, sessionToken string) *Warning {
	if sessionToken == "" {
		metrics.LogoutsTotal.WithLabelValues("no_session").Inc()
		return nil
	}
	if s.store == nil {
		slog.Error("logout_cleanup_failed", "reason", "not_configured")
		metrics.LogoutsTotal.WithLabelValues(metrics.ResultError).Inc()
		return warnNotConfigured
	}

	n, err := s.store.DeleteSession(ctx, sessionToken)
	if err != nil {
		slog.Warn("logout_cleanup_failed", "token_prefix", token.Prefix(sessionToken), "error", err)
		metrics.LogoutsTotal.WithLabelValues(metrics.ResultError).Inc()
		return warnCleanupFailed
	}
	if n == 0 {
		slog.Debug("logout_no_session", "token_prefix", token.Prefix(sessionToken))
		metrics.LogoutsTotal.WithLabelValues("no_session").Inc()
		return nil
	}

	slog.Info("logout_success", "token_prefix", token.Prefix(sessionToken))
	metrics.LogoutsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return nil
}

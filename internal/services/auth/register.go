// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/metrics"
	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/repository"
	"codeberg.org/oliverandrich/website/internal/services/email"
	"codeberg.org/oliverandrich/website/internal/services/password"
	"codeberg.org/oliverandrich/website/internal/services/token"
)

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
	BotToken string
	IP       string // audit only
}

// RegisterResult describes a stored registration. Notified is false when
// the activation mail could not be sent; the account exists regardless.
type RegisterResult struct {
	UserID   int64
	Notified bool
}

// Register creates an inactive account and sends its activation link.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	result, err := s.register(ctx, params)
	metrics.RegistrationsTotal.WithLabelValues(resultLabel(err)).Inc()
	return result, err
}

func (s *Service) register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if s.store == nil || s.verifier == nil {
		slog.Error("register_failed", "reason", "not_configured")
		return nil, ErrNotConfigured
	}

	if params.Email == "" || params.Password == "" || params.BotToken == "" {
		return nil, reject(ErrInvalidInput, "missing_credentials", "Email, password, and reCAPTCHA are required.")
	}
	if !s.validEmail(params.Email) {
		return nil, reject(ErrInvalidInput, "invalid_email", "Please provide a valid email address.")
	}
	if err := s.policy.Validate(params.Password); err != nil {
		var perr *password.PolicyError
		if errors.As(err, &perr) {
			return nil, s.policyError(perr)
		}
		return nil, reject(ErrInvalidInput, "", err.Error())
	}

	if res := s.verifier.Verify(ctx, params.BotToken, params.IP); !res.Success {
		slog.Info("register_failed", "email", params.Email, "reason", "captcha", "ip", params.IP)
		return nil, verificationError(res)
	}

	_, err := s.store.GetUserByEmail(ctx, params.Email)
	if err == nil {
		slog.Info("register_failed", "email", params.Email, "reason", "email_in_use")
		return nil, reject(ErrEmailInUse, "email_in_use", "An account with this email already exists.")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, salt, err := password.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	activationToken, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate activation token: %w", err)
	}
	expires := s.now().UTC().Add(s.config.ActivationWindow)

	user := &models.User{
		Email:             params.Email,
		PasswordHash:      hash,
		PasswordSalt:      salt,
		ActivationToken:   &activationToken,
		ActivationExpires: &expires,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			slog.Info("register_failed", "email", params.Email, "reason", "email_in_use_race")
			return nil, reject(ErrEmailInUse, "email_in_use", "An account with this email already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success",
		"user_id", user.ID,
		"email", params.Email,
		"ip", params.IP,
		"token_prefix", token.Prefix(activationToken),
	)

	notified := s.sendActivation(ctx, params.Email, activationToken)

	return &RegisterResult{UserID: user.ID, Notified: notified}, nil
}

// sendActivation is best effort; the stored account is not rolled back.
func (s *Service) sendActivation(ctx context.Context, to, activationToken string) bool {
	if s.notifier == nil {
		slog.Error("activation_email_failed", "email", to, "reason", "no notifier configured")
		metrics.NotificationsTotal.WithLabelValues("activation", "failed").Inc()
		return false
	}

	err := s.notifier.SendActivation(ctx, email.ActivationNotice{
		To:       to,
		Link:     s.activationLink(activationToken),
		ValidFor: s.config.ActivationWindow,
	})
	if err != nil {
		slog.Error("activation_email_failed", "email", to, "error", err)
		metrics.NotificationsTotal.WithLabelValues("activation", "failed").Inc()
		return false
	}

	metrics.NotificationsTotal.WithLabelValues("activation", "sent").Inc()
	return true
}

// policyError lists every violated rule, led by the first one.
func (s *Service) policyError(perr *password.PolicyError) *Error {
	data := map[string]any{"Min": s.policy.MinLength, "Max": s.policy.MaxLength}
	details := make([]i18n.Message, len(perr.Violations))
	for i, v := range perr.Violations {
		details[i] = i18n.Message{ID: "password_" + v.Code, Default: v.Message, Data: data}
	}
	lead := details[0]
	return &Error{Kind: ErrInvalidInput, ID: lead.ID, Message: lead.Default, Data: data, Details: details}
}

// resultLabel maps a flow error to the metrics result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMissingToken):
		return metrics.ResultInvalid
	case errors.Is(err, ErrVerificationFailed):
		return metrics.ResultCaptcha
	case errors.Is(err, ErrEmailInUse):
		return metrics.ResultConflict
	case errors.Is(err, ErrInvalidCredentials):
		return "rejected"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenNotFound):
		return "not_found"
	default:
		return metrics.ResultError
	}
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/website/internal/metrics"
	"codeberg.org/oliverandrich/website/internal/repository"
	"codeberg.org/oliverandrich/website/internal/services/token"
)

// maxTokenLength bounds activation tokens; longer ones were never issued.
const maxTokenLength = 256

// ActivationStatus is the outcome of a successful activation.
type ActivationStatus int

const (
	StatusActivated ActivationStatus = iota + 1
	StatusAlreadyActive
)

func (s ActivationStatus) String() string {
	switch s {
	case StatusActivated:
		return "activated"
	case StatusAlreadyActive:
		return "already_active"
	default:
		return "unknown"
	}
}

// Activate exchanges an activation token for an active account. The token
// is cleared on success, so it is accepted at most once.
func (s *Service) Activate(ctx context.Context, activationToken string) (ActivationStatus, error) {
	status, err := s.activate(ctx, strings.TrimSpace(activationToken))
	label := resultLabel(err)
	if status == StatusAlreadyActive {
		label = status.String()
	}
	metrics.ActivationsTotal.WithLabelValues(label).Inc()
	return status, err
}

func (s *Service) activate(ctx context.Context, activationToken string) (ActivationStatus, error) {
	if activationToken == "" {
		return 0, reject(ErrMissingToken, "activation_token_missing", "Activation token is missing or invalid.")
	}
	if len(activationToken) > maxTokenLength {
		slog.Info("activation_failed", "reason", "not_found", "token_prefix", token.Prefix(activationToken))
		return 0, errTokenNotFound
	}
	if s.store == nil {
		slog.Error("activation_failed", "reason", "not_configured")
		return 0, ErrNotConfigured
	}

	user, err := s.store.GetUserByActivationToken(ctx, activationToken, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return 0, s.rejectActivation(ctx, activationToken)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up activation token: %w", err)
	}

	if !user.PendingActivation() {
		slog.Info("activation_already_active", "user_id", user.ID)
		return StatusAlreadyActive, nil
	}

	if err := s.store.ActivateUser(ctx, user.ID); err != nil {
		return 0, fmt.Errorf("failed to activate user: %w", err)
	}

	slog.Info("activation_success", "user_id", user.ID, "token_prefix", token.Prefix(activationToken))
	return StatusActivated, nil
}

// rejectActivation tells an expired token apart from an unknown one.
func (s *Service) rejectActivation(ctx context.Context, activationToken string) error {
	user, err := s.store.GetUserByActivationTokenAny(ctx, activationToken)
	switch {
	case err == nil:
		slog.Info("activation_failed", "user_id", user.ID, "reason", "expired", "token_prefix", token.Prefix(activationToken))
		return reject(ErrTokenExpired, "activation_expired", "Activation link has expired. Please register again or request a new link.")
	case errors.Is(err, repository.ErrNotFound):
		slog.Info("activation_failed", "reason", "not_found", "token_prefix", token.Prefix(activationToken))
		return errTokenNotFound
	default:
		return fmt.Errorf("failed to look up activation token: %w", err)
	}
}

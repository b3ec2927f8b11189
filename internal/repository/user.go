// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/website/internal/models"
)

const userColumns = `id, email, password_hash, password_salt, is_active,
	activation_token, activation_expires, created_at`

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. The match is case-sensitive.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// CreateUser inserts an inactive user holding an activation token and sets
// user.ID. A concurrent insert for the same email yields ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	var expires any
	if user.ActivationExpires != nil {
		expires = user.ActivationExpires.UTC()
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, password_salt, is_active, activation_token, activation_expires, created_at)
		 VALUES (?, ?, ?, 0, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.PasswordSalt, user.ActivationToken, expires, now,
	)
	if err != nil {
		if classifyConstraint(err) == constraintUnique && strings.Contains(err.Error(), "users.email") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	user.IsActive = false
	user.CreatedAt = now
	return nil
}

// GetUserByActivationToken returns the user holding token only while the
// token is still valid at now.
func (r *Repository) GetUserByActivationToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	user, err := r.GetUserByActivationTokenAny(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.ActivationExpiredAt(now) {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetUserByActivationTokenAny returns the user holding token regardless of
// expiry.
func (r *Repository) GetUserByActivationTokenAny(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE activation_token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// ActivateUser marks the user active and clears the activation token.
// Activating an already active user succeeds without changes.
func (r *Repository) ActivateUser(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = 1, activation_token = NULL, activation_expires = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

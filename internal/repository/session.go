// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/website/internal/models"
)

// CreateSession stores a new session. Any failure, including a missing
// owner, is reported as ErrSessionStore.
func (r *Repository) CreateSession(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt.UTC(), now,
	)
	if err != nil {
		if classifyConstraint(err) == constraintForeignKey {
			return fmt.Errorf("%w: user %d does not exist", ErrSessionStore, session.UserID)
		}
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	session.CreatedAt = now
	return nil
}

// GetSession returns the session stored under token, expired or not.
func (r *Repository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &session, nil
}

// GetValidSession returns the owning user id if token names a session that
// is still valid at now. Expired rows are reported as ErrNotFound.
func (r *Repository) GetValidSession(ctx context.Context, token string, now time.Time) (int64, error) {
	if token == "" {
		return 0, ErrNotFound
	}
	session, err := r.GetSession(ctx, token)
	if err != nil {
		return 0, err
	}
	if !session.ValidAt(now) {
		return 0, ErrNotFound
	}
	return session.UserID, nil
}

// DeleteSession removes the session and returns the number of deleted rows.
func (r *Repository) DeleteSession(ctx context.Context, token string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}
	return result.RowsAffected()
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

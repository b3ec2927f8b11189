// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/website/internal/models"
)

// CreateComment stores a comment in the moderation queue.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.Status == "" {
		comment.Status = models.CommentPending
	}
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (email, body, ip, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.Email, comment.Body, comment.IP, comment.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read comment id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

// ListCommentsByStatus returns comments with the given status, oldest first.
func (r *Repository) ListCommentsByStatus(ctx context.Context, status string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT id, email, body, ip, status, created_at FROM comments WHERE status = ? ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

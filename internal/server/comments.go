// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/database"
	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/repository"
	"github.com/urfave/cli/v3"
)

// ListComments prints the moderation queue for the requested status.
func ListComments(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	switch status {
	case models.CommentPending, models.CommentApproved, models.CommentRejected:
	default:
		return fmt.Errorf("unknown comment status %q", status)
	}

	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	return printComments(ctx, w, repository.New(db), status)
}

type commentLister interface {
	ListCommentsByStatus(ctx context.Context, status string) ([]models.Comment, error)
}

func printComments(ctx context.Context, w io.Writer, store commentLister, status string) error {
	comments, err := store.ListCommentsByStatus(ctx, status)
	if err != nil {
		return fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		_, err := fmt.Fprintf(w, "no %s comments\n", status)
		return err
	}
	for _, c := range comments {
		_, err := fmt.Fprintf(w, "#%d %s %s (%s)\n%s\n\n",
			c.ID, c.CreatedAt.UTC().Format(time.RFC3339), c.Email, c.IP, html.UnescapeString(c.Body))
		if err != nil {
			return err
		}
	}
	return nil
}

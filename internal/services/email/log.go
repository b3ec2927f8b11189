// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
	"net/url"

	"codeberg.org/oliverandrich/website/internal/services/token"
)

// LogNotifier stands in for Service when no SMTP server is configured.
// It logs what would have been sent and always succeeds.
type LogNotifier struct{}

// SendActivation logs the activation notice.
func (LogNotifier) SendActivation(ctx context.Context, notice ActivationNotice) error {
	slog.InfoContext(ctx, "activation_email_skipped",
		"to", notice.To,
		"token_prefix", token.Prefix(linkToken(notice.Link)),
		"reason", "smtp not configured",
	)
	return nil
}

// SendCommentNotification logs the comment notice.
func (LogNotifier) SendCommentNotification(ctx context.Context, notice CommentNotice) error {
	slog.InfoContext(ctx, "comment_email_skipped",
		"to", notice.To,
		"from", notice.Email,
		"length", len(notice.Comment),
		"reason", "smtp not configured",
	)
	return nil
}

func linkToken(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}

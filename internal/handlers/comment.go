// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/services/comment"
	"github.com/labstack/echo/v4"
)

// CommentHandlers contains the comment form handler.
type CommentHandlers struct {
	comments *comment.Service
}

// NewComment creates a new CommentHandlers instance.
func NewComment(svc *comment.Service) *CommentHandlers {
	return &CommentHandlers{comments: svc}
}

// SubmitComment queues a comment for moderation.
func (h *CommentHandlers) SubmitComment(c echo.Context) error {
	var req CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	_, err := h.comments.Submit(ctx, comment.SubmitParams{
		Email:    req.Email,
		Comment:  req.Comment,
		BotToken: firstNonEmpty(req.Recaptcha, req.BotToken),
		IP:       clientIP(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response{Success: true, Message: i18n.T(ctx, "comment_success")})
}

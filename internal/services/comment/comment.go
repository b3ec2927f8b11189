// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package comment implements the moderated public comment form.
package comment

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/i18n"
	"codeberg.org/oliverandrich/website/internal/metrics"
	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/services/captcha"
	"codeberg.org/oliverandrich/website/internal/services/email"
	"github.com/go-playground/validator/v10"
)

const defaultMaxLength = 256

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrVerificationFailed = errors.New("bot verification failed")
	ErrDuplicateComment   = errors.New("duplicate comment")
	ErrNotConfigured      = errors.New("comment service not configured")
)

// Error is a rejected submission with a client-safe message. ID and Data
// select its translation.
type Error struct {
	Kind    error
	ID      string
	Message string
	Data    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Localize renders the message in the locale of ctx.
func (e *Error) Localize(ctx context.Context) string {
	return i18n.TDefault(ctx, e.ID, e.Message, e.Data)
}

func invalid(id, message string) *Error {
	return &Error{Kind: ErrInvalidInput, ID: id, Message: message}
}

// Store persists comments for moderation.
type Store interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
}

// Verifier confirms a bot-protection token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) captcha.Result
}

// Notifier tells the site owner about new comments.
type Notifier interface {
	SendCommentNotification(ctx context.Context, notice email.CommentNotice) error
}

// Guard detects repeated submissions. Claim reports false for a pair it
// has already seen.
type Guard interface {
	Claim(ctx context.Context, email, body string) (bool, error)
	Release(ctx context.Context, email, body string) error
}

type Service struct {
	store    Store
	verifier Verifier
	notifier Notifier
	guard    Guard
	config   *config.CommentsConfig
	validate *validator.Validate
}

// Option configures a Service.
type Option func(*Service)

// WithGuard enables duplicate detection.
func WithGuard(g Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func NewService(store Store, verifier Verifier, notifier Notifier, cfg *config.CommentsConfig, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		config:   cfg,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitParams holds a comment form submission.
type SubmitParams struct {
	Email    string
	Comment  string
	BotToken string
	IP       string
}

// Submit validates the comment and queues it for moderation.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*models.Comment, error) {
	c, err := s.submit(ctx, params)
	metrics.CommentsTotal.WithLabelValues(resultLabel(err)).Inc()
	return c, err
}

func (s *Service) submit(ctx context.Context, params SubmitParams) (*models.Comment, error) {
	if s.store == nil || s.verifier == nil {
		slog.Error("comment_failed", "reason", "not_configured")
		return nil, ErrNotConfigured
	}

	addr := strings.TrimSpace(params.Email)
	body := strings.TrimSpace(params.Comment)

	if addr == "" {
		return nil, invalid("comment_email_required", "Email is required.")
	}
	if s.validate.Var(addr, "email,max=254") != nil {
		return nil, invalid("invalid_email", "Please provide a valid email address.")
	}
	if body == "" {
		return nil, invalid("comment_required", "Comment is required.")
	}
	if maxLen := s.maxLength(); utf8.RuneCountInString(body) > maxLen {
		return nil, &Error{
			Kind:    ErrInvalidInput,
			ID:      "comment_too_long",
			Message: fmt.Sprintf("Comment exceeds %d characters.", maxLen),
			Data:    map[string]any{"Max": maxLen},
		}
	}
	if params.BotToken == "" {
		return nil, invalid("captcha_missing", "reCAPTCHA token missing.")
	}

	if res := s.verifier.Verify(ctx, params.BotToken, params.IP); !res.Success {
		slog.Info("comment_failed", "email", addr, "reason", "captcha", "ip", params.IP)
		reason := res.Reason()
		return nil, &Error{Kind: ErrVerificationFailed, ID: reason.ID, Message: reason.Default, Data: reason.Data}
	}

	claimed := false
	if s.guard != nil {
		fresh, err := s.guard.Claim(ctx, addr, body)
		switch {
		case err != nil:
			slog.Warn("comment_guard_unavailable", "error", err)
		case !fresh:
			slog.Info("comment_failed", "email", addr, "reason", "duplicate", "ip", params.IP)
			return nil, &Error{Kind: ErrDuplicateComment, ID: "comment_duplicate", Message: "This comment has already been submitted."}
		default:
			claimed = true
		}
	}

	c := &models.Comment{
		Email:  addr,
		Body:   html.EscapeString(body),
		IP:     params.IP,
		Status: models.CommentPending,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		if claimed {
			if rerr := s.guard.Release(ctx, addr, body); rerr != nil {
				slog.Warn("comment_guard_release_failed", "error", rerr)
			}
		}
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	slog.Info("comment_received", "comment_id", c.ID, "email", addr, "ip", params.IP, "length", len(body))

	s.notifyOwner(ctx, c)

	return c, nil
}

// notifyOwner is best effort; the stored comment stays queued either way.
func (s *Service) notifyOwner(ctx context.Context, c *models.Comment) {
	if s.notifier == nil || s.config == nil || s.config.NotifyTo == "" {
		slog.Debug("comment_email_skipped", "comment_id", c.ID, "reason", "no recipient")
		return
	}

	err := s.notifier.SendCommentNotification(ctx, email.CommentNotice{
		SubmittedAt: c.CreatedAt,
		To:          s.config.NotifyTo,
		Email:       c.Email,
		Comment:     c.Body,
		IP:          c.IP,
	})
	if err != nil {
		slog.Error("comment_email_failed", "comment_id", c.ID, "error", err)
		metrics.NotificationsTotal.WithLabelValues("comment", "failed").Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues("comment", "sent").Inc()
}

func (s *Service) maxLength() int {
	if s.config == nil || s.config.MaxLength <= 0 {
		return defaultMaxLength
	}
	return s.config.MaxLength
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrInvalidInput):
		return metrics.ResultInvalid
	case errors.Is(err, ErrVerificationFailed):
		return metrics.ResultCaptcha
	case errors.Is(err, ErrDuplicateComment):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

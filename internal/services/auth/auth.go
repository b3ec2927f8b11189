// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements account registration, activation and the login
// session lifecycle.
package auth

import (
	"context"
	"net/url"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/services/captcha"
	"codeberg.org/oliverandrich/website/internal/services/email"
	"codeberg.org/oliverandrich/website/internal/services/password"
	"codeberg.org/oliverandrich/website/internal/services/token"
	"github.com/go-playground/validator/v10"
)

// Store is the account persistence the flows depend on.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByActivationToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	GetUserByActivationTokenAny(ctx context.Context, token string) (*models.User, error)
	ActivateUser(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetValidSession(ctx context.Context, token string, now time.Time) (int64, error)
	DeleteSession(ctx context.Context, token string) (int64, error)
}

// Verifier confirms a bot-protection token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) captcha.Result
}

// Notifier delivers activation links.
type Notifier interface {
	SendActivation(ctx context.Context, notice email.ActivationNotice) error
}

type Service struct {
	store    Store
	verifier Verifier
	notifier Notifier
	config   *config.AuthConfig
	policy   *password.Policy
	validate *validator.Validate
	now      func() time.Time
	newToken func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenSource replaces the token generator.
func WithTokenSource(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

// WithPolicy replaces the password policy.
func WithPolicy(p *password.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func NewService(store Store, verifier Verifier, notifier Notifier, cfg *config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		config:   cfg,
		policy:   password.DefaultPolicy(),
		validate: validator.New(),
		now:      time.Now,
		newToken: token.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) validEmail(addr string) bool {
	return s.validate.Var(addr, "required,email,max=254") == nil
}

func (s *Service) activationLink(tok string) string {
	u, err := url.Parse(s.config.ActivationURL)
	if err != nil {
		return s.config.ActivationURL + "?token=" + url.QueryEscape(tok)
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String()
}

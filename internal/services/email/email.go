// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/website/internal/config"
	"codeberg.org/oliverandrich/website/internal/i18n"
	"github.com/wneessen/go-mail"
)

// ActivationNotice is the content of an account activation mail.
type ActivationNotice struct {
	To       string
	Link     string
	ValidFor time.Duration
}

// CommentNotice tells the site owner about a comment awaiting moderation.
type CommentNotice struct {
	SubmittedAt time.Time
	To          string
	Email       string
	Comment     string
	IP          string
}

// message is a rendered mail ready to be sent.
type message struct {
	to      string
	replyTo string
	subject string
	body    string
}

// Service sends transactional mail over SMTP.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// SendActivation sends the activation link to a newly registered user in
// the locale carried by ctx.
func (s *Service) SendActivation(ctx context.Context, notice ActivationNotice) error {
	return s.send(ctx, activationMessage(ctx, notice))
}

// SendCommentNotification notifies the site owner about a new comment.
func (s *Service) SendCommentNotification(ctx context.Context, notice CommentNotice) error {
	if notice.To == "" {
		return fmt.Errorf("comment notification recipient is not configured")
	}
	return s.send(ctx, commentMessage(ctx, notice))
}

func activationMessage(ctx context.Context, notice ActivationNotice) message {
	return message{
		to:      notice.To,
		subject: i18n.T(ctx, "activation_email_subject"),
		body: i18n.TData(ctx, "activation_email_body", map[string]any{
			"Link":    notice.Link,
			"Minutes": int(notice.ValidFor.Minutes()),
		}),
	}
}

func commentMessage(ctx context.Context, notice CommentNotice) message {
	return message{
		to:      notice.To,
		replyTo: notice.Email,
		subject: i18n.T(ctx, "comment_email_subject"),
		body: i18n.TData(ctx, "comment_email_body", map[string]any{
			"Email":       notice.Email,
			"IP":          notice.IP,
			"Comment":     notice.Comment,
			"SubmittedAt": notice.SubmittedAt.UTC().Format(time.RFC1123),
		}),
	}
}

// send delivers a message via SMTP using go-mail.
func (s *Service) send(ctx context.Context, m message) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	if m.replyTo != "" {
		if err := msg.ReplyTo(m.replyTo); err != nil {
			return fmt.Errorf("setting reply-to address: %w", err)
		}
	}

	msg.Subject(m.subject)
	msg.SetBodyString(mail.TypeTextPlain, m.body)

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

func (s *Service) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}

	// Implicit TLS on 465, STARTTLS otherwise
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	return opts
}

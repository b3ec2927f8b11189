// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/website/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestActivationMessage(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	m := activationMessage(ctx, ActivationNotice{
		To:       "user@example.com",
		Link:     "https://example.com/activate.html?token=abc",
		ValidFor: 60 * time.Minute,
	})

	assert.Equal(t, "user@example.com", m.to)
	assert.Equal(t, "Activate your account", m.subject)
	assert.Contains(t, m.body, "https://example.com/activate.html?token=abc")
	assert.Contains(t, m.body, "60 minutes")
	assert.Empty(t, m.replyTo)
}

func TestActivationMessage_German(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.German)

	m := activationMessage(ctx, ActivationNotice{To: "user@example.com", Link: "https://x", ValidFor: time.Hour})

	assert.Equal(t, "Aktiviere dein Konto", m.subject)
}

func TestCommentMessage(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	m := commentMessage(ctx, CommentNotice{
		SubmittedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		To:          "owner@example.com",
		Email:       "reader@example.com",
		Comment:     "Great &amp; useful",
		IP:          "203.0.113.7",
	})

	assert.Equal(t, "owner@example.com", m.to)
	assert.Equal(t, "reader@example.com", m.replyTo)
	assert.Equal(t, "New comment awaiting moderation", m.subject)
	assert.Contains(t, m.body, "reader@example.com")
	assert.Contains(t, m.body, "203.0.113.7")
	assert.Contains(t, m.body, "Great &amp; useful")
	assert.Contains(t, m.body, "Sun, 01 Jun 2025 12:00:00 UTC")
}

func TestLinkToken(t *testing.T) {
	assert.Equal(t, "abc", linkToken("https://example.com/activate.html?token=abc"))
	assert.Empty(t, linkToken("https://example.com/activate.html"))
	assert.Empty(t, linkToken("://bad"))
}

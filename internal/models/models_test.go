// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/website/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUser_PendingActivation(t *testing.T) {
	token := "abc"

	assert.True(t, (&models.User{ActivationToken: &token}).PendingActivation())
	assert.False(t, (&models.User{IsActive: true}).PendingActivation())
	assert.False(t, (&models.User{}).PendingActivation())
}

func TestUser_ActivationExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Second)

	assert.False(t, (&models.User{ActivationExpires: &future}).ActivationExpiredAt(now))
	assert.True(t, (&models.User{ActivationExpires: &past}).ActivationExpiredAt(now))
	assert.True(t, (&models.User{ActivationExpires: &now}).ActivationExpiredAt(now), "expiry instant is exclusive")
	assert.True(t, (&models.User{}).ActivationExpiredAt(now))
}

func TestSession_ValidAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&models.Session{ExpiresAt: now.Add(time.Second)}).ValidAt(now))
	assert.False(t, (&models.Session{ExpiresAt: now}).ValidAt(now))
	assert.False(t, (&models.Session{ExpiresAt: now.Add(-time.Hour)}).ValidAt(now))
}

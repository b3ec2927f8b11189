// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/website/internal/models"
	"codeberg.org/oliverandrich/website/internal/repository"
	"codeberg.org/oliverandrich/website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")
	expires := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)

	session := &models.Session{Token: "sess-1", UserID: user.ID, ExpiresAt: expires}
	require.NoError(t, repo.CreateSession(ctx, session))

	stored, err := repo.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.True(t, expires.Equal(stored.ExpiresAt))
}

func TestCreateSession_UnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.CreateSession(context.Background(), &models.Session{
		Token:     "sess-1",
		UserID:    999,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	assert.ErrorIs(t, err, repository.ErrSessionStore)
}

func TestCreateSession_DuplicateToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")

	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "dup", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	err := repo.CreateSession(ctx, &models.Session{Token: "dup", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)})

	assert.ErrorIs(t, err, repository.ErrSessionStore)
}

func TestCreateSession_MultiplePerUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")

	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "a", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "b", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	now := time.Now()
	idA, err := repo.GetValidSession(ctx, "a", now)
	require.NoError(t, err)
	idB, err := repo.GetValidSession(ctx, "b", now)
	require.NoError(t, err)
	assert.Equal(t, idA, idB)
}

func TestGetValidSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")
	now := time.Now().UTC()

	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "dead", UserID: user.ID, ExpiresAt: now.Add(-time.Second)}))

	userID, err := repo.GetValidSession(ctx, "live", now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = repo.GetValidSession(ctx, "dead", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetValidSession(ctx, "missing", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetValidSession(ctx, "", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")

	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "sess", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.DeleteSession(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteSession(ctx, "sess")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.GetValidSession(ctx, "sess", time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "user@example.com", "Abcd1234!")
	now := time.Now().UTC()

	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{Token: "dead", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}))

	n, err := repo.DeleteExpiredSessions(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetSession(ctx, "live")
	assert.NoError(t, err)
	_, err = repo.GetSession(ctx, "dead")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = time.Hour

// CommentGuard rejects identical comments from the same address within a
// time window.
// Key format: comment:<sha256(lower(email) NUL body)>
type CommentGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCommentGuard creates a CommentGuard. A non-positive ttl uses one hour.
func NewCommentGuard(client *redis.Client, ttl time.Duration) *CommentGuard {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &CommentGuard{client: client, ttl: ttl}
}

// Claim records the (email, body) pair and reports whether it was new.
// A pair seen within the window returns false.
func (g *CommentGuard) Claim(ctx context.Context, email, body string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(email, body), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("comment guard: %w", err)
	}
	return ok, nil
}

// Release forgets a pair, so a comment that failed to store can be retried.
func (g *CommentGuard) Release(ctx context.Context, email, body string) error {
	return g.client.Del(ctx, g.key(email, body)).Err()
}

func (g *CommentGuard) key(email, body string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email) + "\x00" + body))
	return "comment:" + hex.EncodeToString(sum[:])
}

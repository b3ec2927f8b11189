// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Session is a server-side login session. Token is also the cookie value.
type Session struct {
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
}

// ValidAt reports whether the session is usable at now.
func (s *Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

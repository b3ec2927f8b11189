// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Comment moderation states.
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
)

// Comment is a public comment awaiting moderation. Body is stored HTML-escaped.
type Comment struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Email     string    `db:"email" json:"email"`
	Body      string    `db:"body" json:"body"`
	IP        string    `db:"ip" json:"-"`
	Status    string    `db:"status" json:"status"`
	ID        int64     `db:"id" json:"id"`
}

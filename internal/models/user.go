// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// User is a registered account. ActivationToken and ActivationExpires are set
// together while the account is pending and cleared together on activation.
type User struct {
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ActivationExpires *time.Time `db:"activation_expires" json:"-"`
	ActivationToken   *string    `db:"activation_token" json:"-"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	PasswordSalt      string     `db:"password_salt" json:"-"`
	ID                int64      `db:"id" json:"id"`
	IsActive          bool       `db:"is_active" json:"is_active"`
}

// PendingActivation reports whether the user still holds an activation token.
func (u *User) PendingActivation() bool {
	return !u.IsActive && u.ActivationToken != nil
}

// ActivationExpiredAt reports whether the activation token is no longer
// valid at now. Users without a token are always expired.
func (u *User) ActivationExpiredAt(now time.Time) bool {
	if u.ActivationExpires == nil {
		return true
	}
	return !u.ActivationExpires.After(now)
}

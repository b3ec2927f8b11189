// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrSessionStore is returned when a session row cannot be written.
	ErrSessionStore = errors.New("session store error")
)

// Repository is the account store backed by SQLite.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintOther
)

// classifyConstraint inspects a modernc sqlite error for constraint violations.
func classifyConstraint(err error) constraintKind {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return constraintNone
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return constraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return constraintForeignKey
	}
	if serr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return constraintNone
	}
	// Primary code only; fall back to the message.
	msg := serr.Error()
	switch {
	case strings.Contains(msg, "UNIQUE"):
		return constraintUnique
	case strings.Contains(msg, "FOREIGN KEY"):
		return constraintForeignKey
	}
	return constraintOther
}

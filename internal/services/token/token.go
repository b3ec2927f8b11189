// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token generates the opaque random tokens used for activation
// links and session cookies.
package token

import (
	"encoding/hex"
	"errors"

	"github.com/gorilla/securecookie"
)

const (
	// DefaultLength is the number of random bytes in a token.
	DefaultLength = 32
	// MinLength is the smallest accepted number of random bytes.
	MinLength = 16

	prefixLength = 8
)

// ErrEntropy is returned when the system random source fails.
var ErrEntropy = errors.New("random source unavailable")

// Generate returns byteLength random bytes, hex encoded. Lengths below
// MinLength are raised to MinLength.
func Generate(byteLength int) (string, error) {
	if byteLength < MinLength {
		byteLength = MinLength
	}
	b := securecookie.GenerateRandomKey(byteLength)
	if b == nil {
		return "", ErrEntropy
	}
	return hex.EncodeToString(b), nil
}

// New returns a token of DefaultLength bytes.
func New() (string, error) {
	return Generate(DefaultLength)
}

// Prefix returns the first characters of a token, safe to write to logs.
func Prefix(t string) string {
	if len(t) <= prefixLength {
		return t
	}
	return t[:prefixLength]
}

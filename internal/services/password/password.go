// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password hashes and verifies account passwords and enforces the
// password policy.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/argon2"
)

// SaltLength is the number of random salt bytes per hash.
const SaltLength = 16

// argon2id parameters. Changing any of them invalidates stored hashes.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var encoding = base64.StdEncoding

// Hash derives a digest for password using a fresh random salt. Both values
// are returned base64 encoded for storage.
func Hash(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, SaltLength)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := derive(password, saltBytes)
	return encoding.EncodeToString(digest), encoding.EncodeToString(saltBytes), nil
}

// Verify reports whether candidate matches the stored hash and salt.
// Malformed stored values verify as false and are logged.
func Verify(storedHash, storedSalt, candidate string) bool {
	want, err := encoding.DecodeString(storedHash)
	if err != nil || len(want) != argonKeyLen {
		slog.Warn("password_verify_malformed", "field", "hash", "length", len(storedHash))
		return false
	}
	salt, err := encoding.DecodeString(storedSalt)
	if err != nil || len(salt) < SaltLength {
		slog.Warn("password_verify_malformed", "field", "salt", "length", len(storedSalt))
		return false
	}

	got := derive(candidate, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

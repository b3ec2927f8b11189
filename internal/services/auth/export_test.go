// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

func DummyCredentials() (string, string) {
	return dummyHash, dummySalt
}

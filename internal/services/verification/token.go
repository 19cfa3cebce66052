// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification generates and hashes email verification tokens.
package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// TokenLength is the number of random bytes for verification tokens.
	TokenLength = 32
	// TokenTTL is how long verification tokens are valid.
	TokenTTL = 24 * time.Hour
	// ResendCooldown is the minimum interval between verification mails
	// to the same address.
	ResendCooldown = 60 * time.Second
)

// GenerateToken returns a new URL-safe verification token. The raw token
// is shown to the user exactly once; only its hash is stored.
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashToken computes the SHA256 hex digest of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ExpiryFrom returns the token expiry for a send at now.
func ExpiryFrom(now time.Time) time.Time {
	return now.Add(TokenTTL)
}

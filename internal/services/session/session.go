// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session issues and verifies bearer session tokens.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens with a bad signature, a
// malformed payload, or a missing user id.
var ErrInvalidToken = errors.New("invalid session token")

// Claims carries the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Issuer mints and verifies HMAC-signed session tokens.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an Issuer using the shared signing secret.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Issue returns a signed token for the given user.
func (i *Issuer) Issue(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify recovers the user id from a token or returns ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	require.NoError(t, err)

	token, err := issuer.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("")

	assert.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, err := NewIssuer("secret-a")
	require.NoError(t, err)
	other, err := NewIssuer("secret-b")
	require.NoError(t, err)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	require.NoError(t, err)

	_, err = issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingUserID(t *testing.T) {
	issuer, err := NewIssuer("test-secret")
	require.NoError(t, err)

	// A token signed with the right secret but without a user id
	token, err := issuer.Issue(0)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

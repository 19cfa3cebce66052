// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init())
}

func TestT_DefaultsToEnglish(t *testing.T) {
	require.NoError(t, Init())

	msg := T(context.Background(), "email_verification_subject")

	assert.Equal(t, "Inkwell: verify your email", msg)
}

func TestT_German(t *testing.T) {
	require.NoError(t, Init())

	ctx := WithLocale(context.Background(), language.German)
	msg := T(ctx, "email_verification_subject")

	assert.Equal(t, "Inkwell: E-Mail-Adresse bestätigen", msg)
}

func TestT_UnknownMessageReturnsID(t *testing.T) {
	require.NoError(t, Init())

	assert.Equal(t, "does_not_exist", T(context.Background(), "does_not_exist"))
}

func TestTData(t *testing.T) {
	require.NoError(t, Init())

	msg := TData(context.Background(), "email_verification_body", map[string]any{
		"Name":      "Ada",
		"VerifyURL": "https://example.com/verify-email?token=abc",
	})

	assert.Contains(t, msg, "Hi Ada,")
	assert.Contains(t, msg, "https://example.com/verify-email?token=abc")
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, language.German, MatchLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, language.English, MatchLanguage("fr-FR"))
}

func TestGetLocale(t *testing.T) {
	require.NoError(t, Init())

	assert.Equal(t, "en", GetLocale(context.Background()))
	assert.Equal(t, "de", GetLocale(WithLocale(context.Background(), language.German)))
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/services/session"
	"codeberg.org/oliverandrich/inkwell/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (allowAll) IsAdmin(string) bool { return true }

type denyAll struct{}

func (denyAll) IsAdmin(string) bool { return false }

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewApprovedUser(t, repo, "ada@example.com")

	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)
	token, err := issuer.Issue(user.ID)
	require.NoError(t, err)

	e := echo.New()
	handler := middleware.RequireUser(issuer, repo)(func(c echo.Context) error {
		current := middleware.CurrentUser(c)
		require.NotNil(t, current)
		assert.Equal(t, user.ID, current.ID)
		return c.NoContent(http.StatusOK)
	})

	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser_MissingHeader(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)

	e := echo.New()
	handler := middleware.RequireUser(issuer, repo)(okHandler)

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_MalformedHeader(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)

	e := echo.New()
	handler := middleware.RequireUser(issuer, repo)(okHandler)

	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Basic abc123",
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_BadToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)

	e := echo.New()
	handler := middleware.RequireUser(issuer, repo)(okHandler)

	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer not-a-token",
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_UnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)
	token, err := issuer.Issue(999)
	require.NoError(t, err)

	e := echo.New()
	handler := middleware.RequireUser(issuer, repo)(okHandler)

	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewApprovedUser(t, repo, "admin@example.com")

	issuer, err := session.NewIssuer("test-secret")
	require.NoError(t, err)
	token, err := issuer.Issue(user.ID)
	require.NoError(t, err)

	e := echo.New()

	allowed := middleware.RequireUser(issuer, repo)(middleware.RequireAdmin(allowAll{})(okHandler))
	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	require.NoError(t, allowed(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	denied := middleware.RequireUser(issuer, repo)(middleware.RequireAdmin(denyAll{})(okHandler))
	c, rec = testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	})
	require.NoError(t, denied(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"codeberg.org/oliverandrich/inkwell/internal/handlers"
	"codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/admin"
	"codeberg.org/oliverandrich/inkwell/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminHandlers(t *testing.T) (*handlers.AdminHandlers, *repository.Repository, *testutil.Mailer, *echo.Echo) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := &testutil.Mailer{}
	svc := admin.NewService(repo, mailer, map[string]struct{}{"admin@example.com": {}})
	return handlers.NewAdmin(svc), repo, mailer, echo.New()
}

func TestListPendingUsersHandler(t *testing.T) {
	h, repo, _, e := newAdminHandlers(t)

	testutil.NewTestUser(t, repo, "first@example.com")
	testutil.NewTestUser(t, repo, "second@example.com")
	testutil.NewApprovedUser(t, repo, "done@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/api/v1/admin/pending-users", nil)
	require.NoError(t, h.ListPendingUsers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users []struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "first@example.com", resp.Users[0].Email)
	assert.Equal(t, "second@example.com", resp.Users[1].Email)
}

func TestApproveHandler(t *testing.T) {
	h, repo, mailer, e := newAdminHandlers(t)

	adm := testutil.NewApprovedUser(t, repo, "admin@example.com")
	target := testutil.NewTestUser(t, repo, "user@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPut, "/api/v1/admin/approve/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(target.ID, 10))
	middleware.SetCurrentUser(c, adm)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user@example.com"}, mailer.Welcomes)

	resp := decodeBody(t, rec.Body.String())
	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.StatusApproved, user["status"])
}

func TestApproveHandler_UnknownUser(t *testing.T) {
	h, repo, _, e := newAdminHandlers(t)
	adm := testutil.NewApprovedUser(t, repo, "admin@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPut, "/api/v1/admin/approve/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues("9999")
	middleware.SetCurrentUser(c, adm)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveHandler_BadID(t *testing.T) {
	h, repo, _, e := newAdminHandlers(t)
	adm := testutil.NewApprovedUser(t, repo, "admin@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPut, "/api/v1/admin/approve/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	middleware.SetCurrentUser(c, adm)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectHandler(t *testing.T) {
	h, repo, _, e := newAdminHandlers(t)

	adm := testutil.NewApprovedUser(t, repo, "admin@example.com")
	target := testutil.NewTestUser(t, repo, "user@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPut, "/api/v1/admin/reject/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(target.ID, 10))
	middleware.SetCurrentUser(c, adm)

	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec.Body.String())
	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.StatusRejected, user["status"])
}

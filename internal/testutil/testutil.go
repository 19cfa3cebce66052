// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/database"
	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/verification"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates an unverified pending user with password "password123".
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user, err := repo.CreateUser(context.Background(), repository.CreateUserParams{
		Email:                 email,
		Name:                  strings.SplitN(email, "@", 2)[0],
		PasswordHash:          string(hash),
		Status:                models.StatusPending,
		VerificationTokenHash: verification.HashToken("test-token-" + email),
		VerificationExpiresAt: now.Add(verification.TokenTTL),
		VerificationSentAt:    now,
	})
	require.NoError(t, err)
	return user
}

// NewApprovedUser creates a verified and approved user ready to sign in.
func NewApprovedUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := NewTestUser(t, repo, email)
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, time.Now().UTC()))
	require.NoError(t, repo.ApproveUser(ctx, user.ID, user.ID))
	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return user
}

// NewTestPost creates a post for the given author.
func NewTestPost(t *testing.T, repo *repository.Repository, authorID int64, title string) int64 {
	t.Helper()
	id, err := repo.CreatePost(context.Background(), title, "content of "+title, "", authorID)
	require.NoError(t, err)
	return id
}

// Mailer is a fake email.Mailer recording every send.
type Mailer struct {
	mu            sync.Mutex
	Verifications []string // recipient addresses
	Welcomes      []string
	Tokens        []string // raw tokens passed to SendVerification
	Err           error    // returned by every send when set
}

func (m *Mailer) SendVerification(_ context.Context, toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Verifications = append(m.Verifications, toEmail)
	m.Tokens = append(m.Tokens, token)
	return nil
}

func (m *Mailer) SendWelcome(_ context.Context, toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Welcomes = append(m.Welcomes, toEmail)
	return nil
}

// LastToken returns the most recently sent verification token.
func (m *Mailer) LastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Tokens) == 0 {
		return ""
	}
	return m.Tokens[len(m.Tokens)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

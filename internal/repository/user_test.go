// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	user, err := repo.CreateUser(ctx, repository.CreateUserParams{
		Email:                 "ada@example.com",
		Name:                  "Ada",
		PasswordHash:          "hash",
		Status:                models.StatusPending,
		VerificationTokenHash: "tokenhash",
		VerificationExpiresAt: now.Add(24 * time.Hour),
		VerificationSentAt:    now,
	})
	require.NoError(t, err)

	assert.Positive(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.False(t, user.Verified())
	require.True(t, user.VerificationTokenHash.Valid)
	assert.Equal(t, "tokenhash", user.VerificationTokenHash.String)
	assert.True(t, user.VerificationExpiresAt.Valid)
	assert.True(t, user.VerificationSentAt.Valid)
	assert.False(t, user.ApprovedBy.Valid)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "ada@example.com")

	_, err := repo.CreateUser(context.Background(), repository.CreateUserParams{
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Status:       models.StatusPending,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestGetUser_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkEmailVerified(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, time.Now().UTC()))

	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, user.Verified())
	assert.False(t, user.VerificationTokenHash.Valid)
	assert.False(t, user.VerificationExpiresAt.Valid)
}

func TestReplaceVerificationToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	sentAt := time.Now().UTC().Add(time.Minute)
	require.NoError(t, repo.ReplaceVerificationToken(ctx, user.ID, "newhash", sentAt.Add(24*time.Hour), sentAt))

	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", user.VerificationTokenHash.String)
	assert.WithinDuration(t, sentAt, user.VerificationSentAt.Time, time.Second)
}

func TestApproveAndRejectUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	adm := testutil.NewTestUser(t, repo, "admin@example.com")
	user := testutil.NewTestUser(t, repo, "ada@example.com")

	require.NoError(t, repo.ApproveUser(ctx, user.ID, adm.ID))
	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, user.Status)
	require.True(t, user.ApprovedBy.Valid)
	assert.Equal(t, adm.ID, user.ApprovedBy.Int64)

	require.NoError(t, repo.RejectUser(ctx, user.ID))
	user, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, user.Status)
	assert.False(t, user.ApprovedBy.Valid)
}

func TestApproveUser_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.ApproveUser(context.Background(), 42, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUserProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "ada@example.com")
	require.NoError(t, repo.UpdateUserProfile(ctx, user.ID, "A short bio", "dark"))

	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "A short bio", user.Bio)
	assert.Equal(t, "dark", user.ThemeKey)
}

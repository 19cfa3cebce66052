// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/models"
)

// CreateUserParams holds everything written in the single signup insert.
// The verification token fields are set together with the row so that a
// crash never leaves an account without an outstanding token.
type CreateUserParams struct { //nolint:govet // fieldalignment: readability over optimization
	Email                 string
	Name                  string
	PasswordHash          string
	Status                string
	VerificationTokenHash string
	VerificationExpiresAt time.Time
	VerificationSentAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, status, verification_token_hash,
		                    verification_expires_at, verification_sent_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.Email, params.Name, params.PasswordHash, params.Status,
		params.VerificationTokenHash, params.VerificationExpiresAt, params.VerificationSentAt,
		now, now)
	if err != nil {
		return nil, wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their normalized email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// MarkEmailVerified records the verification time and clears the token
// fields so the token cannot be used twice.
func (r *Repository) MarkEmailVerified(ctx context.Context, id int64, verifiedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET email_verified_at = ?, verification_token_hash = NULL,
		     verification_expires_at = NULL, updated_at = ?
		 WHERE id = ?`,
		verifiedAt, time.Now().UTC(), id)
	return err
}

// ReplaceVerificationToken overwrites the outstanding verification token.
// The previous token becomes invalid.
func (r *Repository) ReplaceVerificationToken(ctx context.Context, id int64, tokenHash string, expiresAt, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET verification_token_hash = ?, verification_expires_at = ?,
		     verification_sent_at = ?, updated_at = ?
		 WHERE id = ?`,
		tokenHash, expiresAt, sentAt, time.Now().UTC(), id)
	return err
}

// ApproveUser sets the account status to approved and records the
// approving admin. Returns ErrNotFound when the user does not exist.
func (r *Repository) ApproveUser(ctx context.Context, id, approvedBy int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, approved_by = ?, updated_at = ? WHERE id = ?`,
		models.StatusApproved, approvedBy, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RejectUser sets the account status to rejected and clears any earlier
// approval. Returns ErrNotFound when the user does not exist.
func (r *Repository) RejectUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, approved_by = NULL, updated_at = ? WHERE id = ?`,
		models.StatusRejected, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingUsers returns all users awaiting approval, oldest signup first.
func (r *Repository) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE status = ? ORDER BY created_at ASC, id ASC`,
		models.StatusPending)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserProfile updates the display preferences of a user.
func (r *Repository) UpdateUserProfile(ctx context.Context, id int64, bio, themeKey string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET bio = ?, theme_key = ?, updated_at = ? WHERE id = ?`,
		bio, themeKey, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

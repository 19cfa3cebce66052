// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models contains the database row types.
package models

import (
	"database/sql"
	"time"
)

// User account statuses. New accounts start pending unless the signup
// email is on the admin allow-list.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is an account row. Email is stored normalized (trimmed, lowercased)
// and is the unique identity key.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                    int64          `db:"id" json:"id"`
	Email                 string         `db:"email" json:"email"`
	Name                  string         `db:"name" json:"name"`
	PasswordHash          string         `db:"password_hash" json:"-"`
	Status                string         `db:"status" json:"status"`
	EmailVerifiedAt       sql.NullTime   `db:"email_verified_at" json:"email_verified_at"`
	VerificationTokenHash sql.NullString `db:"verification_token_hash" json:"-"` // SHA256 hash, never the raw token
	VerificationExpiresAt sql.NullTime   `db:"verification_expires_at" json:"-"`
	VerificationSentAt    sql.NullTime   `db:"verification_sent_at" json:"-"`
	ApprovedBy            sql.NullInt64  `db:"approved_by" json:"approved_by"`
	Bio                   string         `db:"bio" json:"bio"`
	ThemeKey              string         `db:"theme_key" json:"theme_key"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Verified reports whether the user has confirmed their email address.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt.Valid
}

// Post is a blog post row. IDs are monotonically increasing and serve as
// the feed pagination sort key.
type Post struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ImageKey  string    `db:"image_key" json:"image_key,omitempty"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Comment is a comment row attached to a post.
type Comment struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

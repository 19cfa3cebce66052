// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/models"
)

// CreatePost inserts a new post and returns its ID.
func (r *Repository) CreatePost(ctx context.Context, title, content, imageKey string, authorID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (title, content, image_key, author_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		title, content, imageKey, authorID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePost updates a post owned by authorID. Returns ErrNotFound when
// no post matches both the ID and the author.
func (r *Repository) UpdatePost(ctx context.Context, id, authorID int64, title, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ? AND author_id = ?`,
		title, content, id, authorID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetPost retrieves a single post by ID.
func (r *Repository) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &post, nil
}

// ListPostsPage returns up to limit posts ordered by id descending. When
// cursor is non-zero only rows with id < cursor are returned. The caller
// passes limit+1 to detect whether more pages exist; ids are unique and
// monotonic, so the exclusive bound guarantees no overlap and no gaps
// across pages even under concurrent inserts at the head.
func (r *Repository) ListPostsPage(ctx context.Context, cursor int64, limit int) ([]models.Post, error) {
	var posts []models.Post
	var err error
	if cursor > 0 {
		err = r.db.SelectContext(ctx, &posts,
			`SELECT * FROM posts WHERE id < ? ORDER BY id DESC LIMIT ?`, cursor, limit)
	} else {
		err = r.db.SelectContext(ctx, &posts,
			`SELECT * FROM posts ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComment inserts a comment and returns the stored row.
func (r *Repository) CreateComment(ctx context.Context, postID, authorID int64, content string) (*models.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, author_id, content, created_at) VALUES (?, ?, ?, ?)`,
		postID, authorID, content, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, `SELECT * FROM comments WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &comment, nil
}

// ListComments returns all comments of a post, oldest first.
func (r *Repository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT * FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListRecentComments returns the n most recent comments of a post,
// presented oldest first.
func (r *Repository) ListRecentComments(ctx context.Context, postID int64, n int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT * FROM (
		     SELECT * FROM comments WHERE post_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
		 ) ORDER BY created_at ASC, id ASC`, postID, n)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountComments returns the total number of comments on a post.
func (r *Repository) CountComments(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID); err != nil {
		return 0, err
	}
	return count, nil
}

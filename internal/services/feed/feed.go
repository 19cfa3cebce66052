// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package feed implements the cursor-paginated blog feed and the post
// and comment operations.
package feed

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/storage"
)

const (
	// DefaultLimit is the page size when the client asks for none.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 25
	// previewComments is the number of recent comments attached to each
	// feed row.
	previewComments = 3
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrImageKey     = errors.New("image key is not usable")
)

// ImageStore is the object store collaborator used to validate image
// keys before they are persisted.
type ImageStore interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Service implements the blog feed.
type Service struct {
	repo   *repository.Repository
	images ImageStore
}

// NewService creates a new feed service. images may be nil when no
// object store is configured; posts then cannot carry images.
func NewService(repo *repository.Repository, images ImageStore) *Service {
	return &Service{repo: repo, images: images}
}

// CommentView is a comment enriched with its author's name.
type CommentView struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

// Author is the public author info shown with posts and comments.
type Author struct {
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	ThemeKey string `json:"themeKey,omitempty"`
}

// PostView is a post enriched with author info, comment count, and a
// bounded comment preview.
type PostView struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	ImageKey     string        `json:"imageKey,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	Author       Author        `json:"author"`
	CommentCount int64         `json:"commentCount"`
	TopComments  []CommentView `json:"topComments,omitempty"`
	Comments     []CommentView `json:"comments,omitempty"`
}

// Page is one feed page. NextCursor is nil on the last page.
type Page struct {
	Posts      []PostView `json:"blogs"`
	NextCursor *int64     `json:"nextCursor"`
	HasMore    bool       `json:"hasMore"`
}

// ClampLimit maps a requested page size to the one actually used:
// max(1, min(MaxLimit, limit)), with DefaultLimit for limit <= 0.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListPosts returns one feed page, newest first. cursor is exclusive:
// only posts with id < cursor are returned. The extra row fetched
// beyond the page size only signals that more pages exist and is
// dropped from the result.
func (s *Service) ListPosts(ctx context.Context, cursor int64, limit int) (*Page, error) {
	limit = ClampLimit(limit)

	posts, err := s.repo.ListPostsPage(ctx, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	page := &Page{
		Posts:   make([]PostView, 0, len(posts)),
		HasMore: hasMore,
	}
	for i := range posts {
		view, err := s.postView(ctx, &posts[i], true)
		if err != nil {
			return nil, err
		}
		page.Posts = append(page.Posts, *view)
	}

	if hasMore {
		last := page.Posts[len(page.Posts)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// GetPost returns a single post with its full comment list.
func (s *Service) GetPost(ctx context.Context, id int64) (*PostView, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.postView(ctx, post, false)
}

// CreatePost validates the input and the optional image key, then
// stores the post. The image key must lie in the author's namespace and
// reference an object that was actually uploaded.
func (s *Service) CreatePost(ctx context.Context, authorID int64, title, content, imageKey string) (int64, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return 0, ErrInvalidInput
	}

	if imageKey != "" {
		if err := s.checkImageKey(ctx, authorID, imageKey); err != nil {
			return 0, err
		}
	}

	return s.repo.CreatePost(ctx, title, content, imageKey, authorID)
}

// UpdatePost updates a post owned by the author.
func (s *Service) UpdatePost(ctx context.Context, authorID, postID int64, title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if postID <= 0 || title == "" || content == "" {
		return ErrInvalidInput
	}

	err := s.repo.UpdatePost(ctx, postID, authorID, title, content)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

// AddComment stores a comment on an existing post.
func (s *Service) AddComment(ctx context.Context, postID, authorID int64, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment, err := s.repo.CreateComment(ctx, postID, authorID, content)
	if err != nil {
		return nil, err
	}
	return s.commentView(ctx, comment)
}

func (s *Service) checkImageKey(ctx context.Context, authorID int64, key string) error {
	if !storage.OwnedBy(key, authorID) {
		return ErrImageKey
	}
	if s.images == nil {
		return ErrImageKey
	}
	exists, err := s.images.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrImageKey
	}
	return nil
}

// postView builds the enriched read model for one post. preview selects
// between the bounded comment preview (feed) and the full comment list
// (detail page).
func (s *Service) postView(ctx context.Context, post *models.Post, preview bool) (*PostView, error) {
	author, err := s.repo.GetUserByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	view := &PostView{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		ImageKey:  post.ImageKey,
		CreatedAt: post.CreatedAt,
		Author: Author{
			Name:     author.Name,
			Bio:      author.Bio,
			ThemeKey: author.ThemeKey,
		},
	}

	if preview {
		count, err := s.repo.CountComments(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		view.CommentCount = count

		comments, err := s.repo.ListRecentComments(ctx, post.ID, previewComments)
		if err != nil {
			return nil, err
		}
		view.TopComments, err = s.commentViews(ctx, comments)
		if err != nil {
			return nil, err
		}
	} else {
		comments, err := s.repo.ListComments(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		view.CommentCount = int64(len(comments))
		view.Comments, err = s.commentViews(ctx, comments)
		if err != nil {
			return nil, err
		}
	}

	return view, nil
}

func (s *Service) commentViews(ctx context.Context, comments []models.Comment) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		view, err := s.commentView(ctx, &comments[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *Service) commentView(ctx context.Context, comment *models.Comment) (*CommentView, error) {
	author, err := s.repo.GetUserByID(ctx, comment.AuthorID)
	if err != nil {
		return nil, err
	}
	return &CommentView{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		Author:    Author{Name: author.Name},
	}, nil
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/services/feed"
	"codeberg.org/oliverandrich/inkwell/internal/storage"
	"github.com/labstack/echo/v4"
)

// BlogHandlers contains the feed, post, and comment handlers.
type BlogHandlers struct {
	feed  *feed.Service
	store *storage.Store
}

// NewBlog creates a new BlogHandlers instance. store may be nil when no
// object store is configured.
func NewBlog(feedSvc *feed.Service, store *storage.Store) *BlogHandlers {
	return &BlogHandlers{feed: feedSvc, store: store}
}

// List returns one feed page. Query parameters: cursor (exclusive upper
// bound on post id) and limit.
func (h *BlogHandlers) List(c echo.Context) error {
	var cursor int64
	if raw := c.QueryParam("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return fail(c, http.StatusBadRequest, "Invalid cursor")
		}
		cursor = parsed
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	page, err := h.feed.ListPosts(c.Request().Context(), cursor, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a single post with all comments.
func (h *BlogHandlers) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid blog id")
	}

	post, err := h.feed.GetPost(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"blog": post})
}

// CreatePostRequest is the request body for publishing a post.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageKey string `json:"imageKey"`
}

// Create publishes a new post by the authenticated user.
func (h *BlogHandlers) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	user := middleware.CurrentUser(c)
	id, err := h.feed.CreatePost(c.Request().Context(), user.ID, req.Title, req.Content, req.ImageKey)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

// UpdatePostRequest is the request body for editing a post.
type UpdatePostRequest struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Update edits a post owned by the authenticated user.
func (h *BlogHandlers) Update(c echo.Context) error {
	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	user := middleware.CurrentUser(c)
	if err := h.feed.UpdatePost(c.Request().Context(), user.ID, req.ID, req.Title, req.Content); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"id": req.ID})
}

// CommentRequest is the request body for commenting on a post.
type CommentRequest struct {
	Content string `json:"content"`
}

// AddComment adds a comment to a post.
func (h *BlogHandlers) AddComment(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid blog id")
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	user := middleware.CurrentUser(c)
	comment, err := h.feed.AddComment(c.Request().Context(), postID, user.ID, req.Content)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"comment": comment})
}

// UploadURLRequest is the request body for requesting an image upload
// URL.
type UploadURLRequest struct {
	Ext         string `json:"ext"`
	ContentType string `json:"contentType"`
}

var allowedImageExts = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
}

// UploadURL hands out a presigned PUT URL inside the author's key
// namespace. The key is validated again at post creation time.
func (h *BlogHandlers) UploadURL(c echo.Context) error {
	if h.store == nil {
		return fail(c, http.StatusServiceUnavailable, "Image uploads are not configured")
	}

	var req UploadURLRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(req.Ext)), ".")
	if _, ok := allowedImageExts[ext]; !ok {
		return fail(c, http.StatusBadRequest, "Unsupported image type")
	}

	user := middleware.CurrentUser(c)
	key := storage.BuildKey(user.ID, ext)

	url, err := h.store.PresignPut(c.Request().Context(), key, req.ContentType)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"key":       key,
		"url":       url,
		"publicUrl": h.store.PublicURL(key),
	})
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package feed_test

import (
	"context"
	"fmt"
	"testing"

	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/feed"
	"codeberg.org/oliverandrich/inkwell/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImageStore answers Exists from a fixed key set.
type fakeImageStore struct {
	keys map[string]bool
}

func (f *fakeImageStore) Exists(_ context.Context, key string) (bool, error) {
	return f.keys[key], nil
}

func newService(t *testing.T) (*feed.Service, *repository.Repository, *fakeImageStore) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	images := &fakeImageStore{keys: map[string]bool{}}
	return feed.NewService(repo, images), repo, images
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, feed.DefaultLimit},
		{"negative uses default", -5, feed.DefaultLimit},
		{"one stays", 1, 1},
		{"in range stays", 17, 17},
		{"max stays", feed.MaxLimit, feed.MaxLimit},
		{"above max clamps", 100, feed.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, feed.ClampLimit(tt.limit))
		})
	}
}

func TestListPosts_Pagination(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	var ids []int64
	for i := range 7 {
		ids = append(ids, testutil.NewTestPost(t, repo, author.ID, fmt.Sprintf("post %d", i)))
	}

	page, err := svc.ListPosts(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
	// The cursor is the id of the last post on the page, not the look-ahead row
	assert.Equal(t, ids[4], *page.NextCursor)
	assert.Equal(t, ids[6], page.Posts[0].ID)

	page, err = svc.ListPosts(ctx, *page.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	assert.True(t, page.HasMore)

	page, err = svc.ListPosts(ctx, *page.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestListPosts_ExactFit(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	for i := range 3 {
		testutil.NewTestPost(t, repo, author.ID, fmt.Sprintf("post %d", i))
	}

	// Page size equals the table size: full page, no next cursor
	page, err := svc.ListPosts(ctx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestListPosts_Empty(t *testing.T) {
	svc, _, _ := newService(t)

	page, err := svc.ListPosts(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestListPosts_CommentPreview(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	postID := testutil.NewTestPost(t, repo, author.ID, "busy post")
	for i := range 5 {
		_, err := repo.CreateComment(ctx, postID, author.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	page, err := svc.ListPosts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)

	post := page.Posts[0]
	assert.EqualValues(t, 5, post.CommentCount)
	require.Len(t, post.TopComments, 3)
	// The 3 newest, oldest of them first
	assert.Equal(t, "comment 2", post.TopComments[0].Content)
	assert.Equal(t, "comment 4", post.TopComments[2].Content)
	assert.Equal(t, "ada", post.TopComments[0].Author.Name)
}

func TestGetPost_FullComments(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	postID := testutil.NewTestPost(t, repo, author.ID, "busy post")
	for i := range 5 {
		_, err := repo.CreateComment(ctx, postID, author.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	post, err := svc.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, post.CommentCount)
	require.Len(t, post.Comments, 5)
	assert.Equal(t, "comment 0", post.Comments[0].Content)
	assert.Empty(t, post.TopComments)
}

func TestGetPost_NotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.GetPost(context.Background(), 42)
	assert.ErrorIs(t, err, feed.ErrPostNotFound)
}

func TestCreatePost_Validation(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")

	_, err := svc.CreatePost(ctx, author.ID, "  ", "content", "")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = svc.CreatePost(ctx, author.ID, "title", "\t\n", "")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	id, err := svc.CreatePost(ctx, author.ID, " Title ", " content ", "")
	require.NoError(t, err)
	post, err := repo.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Title", post.Title)
	assert.Equal(t, "content", post.Content)
}

func TestCreatePost_ImageKey(t *testing.T) {
	svc, repo, images := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	goodKey := fmt.Sprintf("posts/%d/123-abc.jpg", author.ID)
	foreignKey := fmt.Sprintf("posts/%d/123-abc.jpg", author.ID+1)
	images.keys[goodKey] = true
	images.keys[foreignKey] = true

	// Key outside the author's namespace
	_, err := svc.CreatePost(ctx, author.ID, "title", "content", foreignKey)
	assert.ErrorIs(t, err, feed.ErrImageKey)

	// Key in the namespace but never uploaded
	_, err = svc.CreatePost(ctx, author.ID, "title", "content", fmt.Sprintf("posts/%d/missing.jpg", author.ID))
	assert.ErrorIs(t, err, feed.ErrImageKey)

	id, err := svc.CreatePost(ctx, author.ID, "title", "content", goodKey)
	require.NoError(t, err)
	post, err := repo.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, goodKey, post.ImageKey)
}

func TestCreatePost_NoStoreConfigured(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := feed.NewService(repo, nil)
	author := testutil.NewApprovedUser(t, repo, "ada@example.com")

	_, err := svc.CreatePost(context.Background(), author.ID, "title", "content",
		fmt.Sprintf("posts/%d/123-abc.jpg", author.ID))
	assert.ErrorIs(t, err, feed.ErrImageKey)
}

func TestUpdatePost(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	other := testutil.NewApprovedUser(t, repo, "eve@example.com")
	id := testutil.NewTestPost(t, repo, author.ID, "Original")

	// Another user's edit reads as not found
	err := svc.UpdatePost(ctx, other.ID, id, "Hijacked", "nope")
	assert.ErrorIs(t, err, feed.ErrPostNotFound)

	err = svc.UpdatePost(ctx, author.ID, id, "", "content")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	require.NoError(t, svc.UpdatePost(ctx, author.ID, id, "Edited", "new content"))
}

func TestAddComment(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	author := testutil.NewApprovedUser(t, repo, "ada@example.com")
	postID := testutil.NewTestPost(t, repo, author.ID, "Commented")

	_, err := svc.AddComment(ctx, postID, author.ID, "   ")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = svc.AddComment(ctx, 9999, author.ID, "hello")
	assert.ErrorIs(t, err, feed.ErrPostNotFound)

	comment, err := svc.AddComment(ctx, postID, author.ID, " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", comment.Content)
	assert.Equal(t, "ada", comment.Author.Name)
}

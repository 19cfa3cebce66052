// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	key := BuildKey(42, ".PNG")

	assert.True(t, strings.HasPrefix(key, "posts/42/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestBuildKey_Unique(t *testing.T) {
	assert.NotEqual(t, BuildKey(1, "jpg"), BuildKey(1, "jpg"))
}

func TestOwnedBy(t *testing.T) {
	key := BuildKey(42, "png")

	assert.True(t, OwnedBy(key, 42))
	assert.False(t, OwnedBy(key, 7))
	assert.False(t, OwnedBy("posts/421/x.png", 42))
	assert.False(t, OwnedBy("other/42/x.png", 42))
}

func TestPublicURL(t *testing.T) {
	s := &Store{baseURL: "https://img.example.com"}

	assert.Equal(t, "https://img.example.com/posts/1/a.png", s.PublicURL("posts/1/a.png"))
}

func TestPublicURL_NoBase(t *testing.T) {
	s := &Store{}

	assert.Equal(t, "posts/1/a.png", s.PublicURL("posts/1/a.png"))
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	// Migrations have run: all three tables exist
	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'posts', 'comments')`)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAddDefaultParams(t *testing.T) {
	dsn := addDefaultParams("app.db")

	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_foreign_keys=on")
	assert.True(t, strings.HasPrefix(dsn, "app.db?"))
}

func TestAddDefaultParams_DoesNotDuplicate(t *testing.T) {
	dsn := addDefaultParams("app.db?_busy_timeout=100")

	assert.Equal(t, 1, strings.Count(dsn, "_busy_timeout"))
}

func TestMigrateDown(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateDown(db.DB))

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`)
	require.NoError(t, err)
	assert.Zero(t, count)
}

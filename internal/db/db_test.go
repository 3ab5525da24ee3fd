package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	database, err := OpenFile(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	status, err := Status(database)
	require.NoError(t, err)
	assert.Equal(t, uint(0), status.CurrentVersion)
	assert.True(t, status.Pending)

	require.NoError(t, Migrate(database))
	// running again is a no-op
	require.NoError(t, Migrate(database))

	status, err = Status(database)
	require.NoError(t, err)
	assert.Equal(t, status.LatestVersion, status.CurrentVersion)
	assert.False(t, status.Pending)
	assert.False(t, status.Dirty)

	var count int
	require.NoError(t, database.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('tasks', 'completions', 'notifications')",
	).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestOpen_UsesCyclenceHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CYCLENCE_HOME", dir)
	defer Close()

	database, err := OpenAndMigrate()
	require.NoError(t, err)
	assert.Same(t, database, Get())
	assert.FileExists(t, filepath.Join(dir, "db", "cyclence.sqlite"))

	status, err := GetMigrationStatus()
	require.NoError(t, err)
	assert.False(t, status.Pending)
}

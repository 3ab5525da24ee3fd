package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.DefaultPoints)
	assert.Equal(t, 5, cfg.SchedulePreview)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.DirExists(t, filepath.Join(dir, "db"))

	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	content := `
user = "josh@example.com"
name = "Josh"
default_points = 50
default_allow_early = false
schedule_preview = 3
reminder_schedule = "@every 1h"
log_level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "josh@example.com", cfg.User)
	assert.Equal(t, 50, cfg.DefaultPoints)
	assert.False(t, cfg.DefaultAllowEarly)
	assert.Equal(t, 3, cfg.SchedulePreview)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"user without email": func(c *Config) { c.User = "josh" },
		"negative points":    func(c *Config) { c.DefaultPoints = -1 },
		"empty preview":      func(c *Config) { c.SchedulePreview = 0 },
		"bad level":          func(c *Config) { c.LogLevel = "loud" },
		"bad schedule":       func(c *Config) { c.ReminderSchedule = "every morning" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestPaths(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/cyc")

	p, err := DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cyc/db/cyclence.sqlite", p)

	p, err = ErrorLogPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cyc/errors.log", p)
}

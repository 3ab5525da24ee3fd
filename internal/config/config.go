package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// HomeEnv overrides the cyclence data directory.
const HomeEnv = "CYCLENCE_HOME"

type Config struct {
	User              string `toml:"user"`
	Name              string `toml:"name"`
	DefaultPoints     int    `toml:"default_points"`
	DefaultAllowEarly bool   `toml:"default_allow_early"`
	SchedulePreview   int    `toml:"schedule_preview"`
	ReminderSchedule  string `toml:"reminder_schedule"`
	LogLevel          string `toml:"log_level"`
}

func DefaultConfig() *Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "me"
	}
	return &Config{
		User:              user + "@localhost",
		Name:              user,
		DefaultPoints:     100,
		DefaultAllowEarly: true,
		SchedulePreview:   5,
		ReminderSchedule:  "0 0 8 * * *",
		LogLevel:          "info",
	}
}

func CyclenceDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return expandPath(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cyclence"), nil
}

func ConfigPath() (string, error) {
	dir, err := CyclenceDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := CyclenceDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "cyclence.sqlite"), nil
}

func ErrorLogPath() (string, error) {
	dir, err := CyclenceDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "errors.log"), nil
}

func EnsureDirectories() error {
	dir, err := CyclenceDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "db"), 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	// First run writes the defaults so the user has something to edit
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !strings.Contains(c.User, "@") {
		return fmt.Errorf("user must be an email address, got %q", c.User)
	}
	if c.DefaultPoints < 0 {
		return fmt.Errorf("default_points cannot be negative")
	}
	if c.SchedulePreview < 1 {
		return fmt.Errorf("schedule_preview must be at least 1")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.ReminderSchedule); err != nil {
		return fmt.Errorf("reminder_schedule %q: %w", c.ReminderSchedule, err)
	}
	return nil
}

// Level is the configured zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

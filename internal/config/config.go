// Package config reads tasklane settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	DBPath         string
	LogEnabled     bool
	LogLevel       slog.Level
	ReloadDebounce time.Duration
	PollInterval   time.Duration
	Location       *time.Location
	RolloverAt     string // HH:MM
}

// DefaultConfig returns the defaults used for every unset variable. DBPath
// stays empty until Load resolves the home directory.
func DefaultConfig() Config {
	return Config{
		LogLevel:       slog.LevelInfo,
		ReloadDebounce: 250 * time.Millisecond,
		PollInterval:   2 * time.Second,
		Location:       time.Local,
		RolloverAt:     "00:00",
	}
}

// Load reads TASKLANE_* variables, falling back to defaults for unset or
// unparsable values. Only a missing home directory or an unknown time zone
// is an error.
func Load() (Config, error) {
	cfg := DefaultConfig()

	cfg.DBPath = os.Getenv("TASKLANE_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".tasklane", "tasklane.db")
	}
	if v := os.Getenv("TASKLANE_LOG"); v != "" {
		cfg.LogEnabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TASKLANE_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv("TASKLANE_RELOAD_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReloadDebounce = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("TASKLANE_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("TASKLANE_TZ"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("loading time zone %q: %w", v, err)
		}
		cfg.Location = loc
	}
	if v := os.Getenv("TASKLANE_ROLLOVER"); v != "" {
		if _, _, err := ParseClock(v); err == nil {
			cfg.RolloverAt = v
		}
	}
	return cfg, nil
}

// ParseClock splits an HH:MM string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

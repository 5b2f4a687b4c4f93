package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/dropship/pkg/store"
)

const (
	// DefaultDirName is the per-user directory holding config and profile.
	DefaultDirName = ".dropship"

	// DefaultProfileName is the stored profile's file name.
	DefaultProfileName = store.DefaultFileName
)

// Config holds CLI configuration for dropship.
type Config struct {
	ProfilePath   string
	HTTPTimeout   time.Duration
	WatchDebounce time.Duration
	LogLevel      string
	Quiet         bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ProfilePath:   DefaultProfilePath(),
		HTTPTimeout:   10 * time.Minute,
		WatchDebounce: 100 * time.Millisecond,
		LogLevel:      "info",
	}
}

// DefaultProfilePath returns ~/.dropship/profile.json, or "" when the home
// directory is unknown.
func DefaultProfilePath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, DefaultDirName, DefaultProfileName)
	}
	return ""
}

// Validate checks the configuration for errors and normalizes it.
func (c *Config) Validate() error {
	if c.ProfilePath == "" {
		return fmt.Errorf("profile path is required (home directory unknown)")
	}
	if strings.HasPrefix(c.ProfilePath, "~/") {
		h, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("expand profile path: %w", err)
		}
		c.ProfilePath = filepath.Join(h, c.ProfilePath[2:])
	}

	// Zero disables the client timeout.
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive")
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

// configSetter applies values unless the matching flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

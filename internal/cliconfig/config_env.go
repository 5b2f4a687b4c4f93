package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (DROPSHIP_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("profile", os.Getenv("DROPSHIP_PROFILE_PATH"), &cfg.ProfilePath)
	s.setString("log-level", os.Getenv("DROPSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("DROPSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("watch-debounce", os.Getenv("DROPSHIP_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBoolFromString("quiet", os.Getenv("DROPSHIP_QUIET"), &cfg.Quiet)

	return nil
}

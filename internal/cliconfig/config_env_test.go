package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"DROPSHIP_PROFILE_PATH":   "/env/profile.json",
				"DROPSHIP_HTTP_TIMEOUT":   "45s",
				"DROPSHIP_WATCH_DEBOUNCE": "1s",
				"DROPSHIP_LOG_LEVEL":      "error",
				"DROPSHIP_QUIET":          "1",
			},
			changed: map[string]bool{},
			expected: Config{
				ProfilePath:   "/env/profile.json",
				HTTPTimeout:   45 * time.Second,
				WatchDebounce: time.Second,
				LogLevel:      "error",
				Quiet:         true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"DROPSHIP_PROFILE_PATH": "/env/profile.json",
				"DROPSHIP_QUIET":        "true",
			},
			changed:  map[string]bool{"profile": true, "quiet": true},
			initial:  Config{ProfilePath: "/flag/profile.json"},
			expected: Config{ProfilePath: "/flag/profile.json"},
		},
		{
			name:     "quiet accepts only true and 1",
			envVars:  map[string]string{"DROPSHIP_QUIET": "yes"},
			changed:  map[string]bool{},
			initial:  Config{Quiet: true},
			expected: Config{Quiet: false},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"DROPSHIP_HTTP_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{
				"DROPSHIP_PROFILE_PATH", "DROPSHIP_HTTP_TIMEOUT", "DROPSHIP_WATCH_DEBOUNCE",
				"DROPSHIP_LOG_LEVEL", "DROPSHIP_QUIET",
			} {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		ProfilePath: "/file/profile.json",
		LogLevel:    "debug",
		HTTPTimeout: "1m",
		Quiet:       &trueVal,
	}

	t.Setenv("DROPSHIP_PROFILE_PATH", "/env/profile.json")
	t.Setenv("DROPSHIP_LOG_LEVEL", "warn")
	t.Setenv("DROPSHIP_HTTP_TIMEOUT", "")
	t.Setenv("DROPSHIP_WATCH_DEBOUNCE", "")
	t.Setenv("DROPSHIP_QUIET", "")

	changed := map[string]bool{
		"profile": true,
	}

	cfg := Config{
		ProfilePath: "/cli/profile.json",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.ProfilePath != "/cli/profile.json" {
		t.Errorf("ProfilePath = %v, want /cli/profile.json (CLI should win)", cfg.ProfilePath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn (env should override file)", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != time.Minute {
		t.Errorf("HTTPTimeout = %v, want 1m (file should set)", cfg.HTTPTimeout)
	}
	if !cfg.Quiet {
		t.Errorf("Quiet = %v, want true (file should set)", cfg.Quiet)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MNS_SOURCE", "MNS_BASE_URL", "MNS_CALENDAR_ID", "MNS_API_TOKEN",
		"MNS_CREDENTIALS_FILE", "MNS_ICS_URL", "MNS_NOTES_DIR", "MNS_STATE_PATH",
		"MNS_TLD_RULES_URL", "MNS_TLD_RULES_FILE", "MNS_INTERNAL_DOMAINS",
		"MNS_LABEL_PREFIX", "MNS_COMPANY_LOOKUP_URL", "MNS_TIMEZONE",
		"MNS_COLORIZE", "MNS_BLOCKER", "MNS_MEETING_TO_NOTE",
		"MNS_KEEP_CANCELLED_NOTES", "MNS_REQUEST_TIMEOUT", "MNS_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MNS_SOURCE", "ics")
	t.Setenv("MNS_ICS_URL", "https://example.test/calendar.ics")
	t.Setenv("MNS_INTERNAL_DOMAINS", "corp.com, corp.io")
	t.Setenv("MNS_REQUEST_TIMEOUT", "5s")
	t.Setenv("MNS_LOG_LEVEL", "debug")
	t.Setenv("MNS_BLOCKER", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "ics" {
		t.Fatalf("unexpected source: %q", cfg.Source)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout)
	}
	if len(cfg.InternalDomains) != 2 || cfg.InternalDomains[1] != "corp.io" {
		t.Fatalf("unexpected internal domains: %v", cfg.InternalDomains)
	}
	if cfg.Blocker {
		t.Fatal("expected blocker disabled")
	}
	if !cfg.Colorize || !cfg.MeetingToNote {
		t.Fatal("expected untouched toggles to keep their defaults")
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `source: api
calendar_id: primary
api_token: file-token
internal_domains:
  - corp.com
label_prefix: "Accounts/"
request_timeout: 30s
colorize: false
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MNS_API_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIToken != "env-token" {
		t.Fatalf("environment should override the file, got %q", cfg.APIToken)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout)
	}
	if cfg.Colorize {
		t.Fatal("expected colorize disabled by file")
	}
	if cfg.LabelPrefix != "Accounts/" {
		t.Fatalf("unexpected label prefix: %q", cfg.LabelPrefix)
	}
}

func TestValidateErrors(t *testing.T) {
	base := Config{
		Source:          "api",
		CalendarID:      "primary",
		APIToken:        "tok",
		NotesDir:        "notes",
		StatePath:       "state.db",
		TLDRulesURL:     DefaultRulesURL,
		InternalDomains: []string{"corp.com"},
		MeetingToNote:   true,
		RequestTimeout:  time.Second,
		LogLevel:        "info",
	}
	cases := map[string]func(*Config){
		"bad source":          func(c *Config) { c.Source = "bogus" },
		"api without id":      func(c *Config) { c.CalendarID = "" },
		"api without token":   func(c *Config) { c.APIToken = ""; c.CredentialsFile = "" },
		"ics without url":     func(c *Config) { c.Source = "ics"; c.ICSURL = "" },
		"no notes dir":        func(c *Config) { c.NotesDir = "" },
		"no state path":       func(c *Config) { c.StatePath = "" },
		"no internal domains": func(c *Config) { c.InternalDomains = nil },
		"no rules source":     func(c *Config) { c.TLDRulesURL = ""; c.TLDRulesFile = "" },
		"bad timeout":         func(c *Config) { c.RequestTimeout = -time.Second },
		"bad log level":       func(c *Config) { c.LogLevel = "trace" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestDefaultsWhenEnvInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("MNS_SOURCE", "ics")
	t.Setenv("MNS_ICS_URL", "https://example.test/calendar.ics")
	t.Setenv("MNS_INTERNAL_DOMAINS", "corp.com")
	t.Setenv("MNS_REQUEST_TIMEOUT", "oops")
	t.Setenv("MNS_COLORIZE", "oops")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.RequestTimeout)
	}
	if !cfg.Colorize {
		t.Fatal("expected default true for Colorize")
	}
}

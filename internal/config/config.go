// Package config loads settings from an optional YAML file with
// environment variable overrides. Every variable carries the MNS_
// prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultRulesURL = "https://publicsuffix.org/list/public_suffix_list.dat"

type Config struct {
	// Source selects the calendar backend: "api" for the writable
	// HTTP API, "ics" for a read-only feed.
	Source          string
	BaseURL         string
	CalendarID      string
	APIToken        string
	CredentialsFile string
	ICSURL          string

	NotesDir  string
	StatePath string

	TLDRulesURL  string
	TLDRulesFile string

	// InternalDomains are the organization's own domains; attendees
	// outside them count as external.
	InternalDomains  []string
	LabelPrefix      string
	CompanyLookupURL string
	Timezone         string

	Colorize           bool
	Blocker            bool
	MeetingToNote      bool
	KeepCancelledNotes bool
	// FullSync discards the stored sync token on every run.
	FullSync bool
	// Debug logs mutations instead of performing them.
	Debug bool

	RequestTimeout time.Duration
	LogLevel       string
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when empty) and finally the environment.
func Load(path string) (Config, error) {
	cfg := Config{
		Source:         "api",
		NotesDir:       "notes",
		StatePath:      "meeting-note-sync.db",
		TLDRulesURL:    DefaultRulesURL,
		Timezone:       "Local",
		Colorize:       true,
		Blocker:        true,
		MeetingToNote:  true,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Source {
	case "api":
		if c.CalendarID == "" {
			return errors.New("calendar id is required when source=api")
		}
		if c.APIToken == "" && c.CredentialsFile == "" {
			return errors.New("either MNS_API_TOKEN or MNS_CREDENTIALS_FILE is required when source=api")
		}
	case "ics":
		if c.ICSURL == "" {
			return errors.New("MNS_ICS_URL is required when source=ics")
		}
	default:
		return fmt.Errorf("invalid source: %s", c.Source)
	}
	if c.MeetingToNote && c.NotesDir == "" {
		return errors.New("notes directory is required when meeting-to-note is enabled")
	}
	if c.StatePath == "" {
		return errors.New("state path is required")
	}
	if len(c.InternalDomains) == 0 {
		return errors.New("at least one internal domain is required")
	}
	if c.TLDRulesURL == "" && c.TLDRulesFile == "" {
		return errors.New("either a rules URL or a rules file is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be > 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// fileConfig mirrors Config with pointer fields so keys absent from
// the YAML file do not clobber defaults.
type fileConfig struct {
	Source          *string `yaml:"source"`
	BaseURL         *string `yaml:"base_url"`
	CalendarID      *string `yaml:"calendar_id"`
	APIToken        *string `yaml:"api_token"`
	CredentialsFile *string `yaml:"credentials_file"`
	ICSURL          *string `yaml:"ics_url"`

	NotesDir  *string `yaml:"notes_dir"`
	StatePath *string `yaml:"state_path"`

	TLDRulesURL  *string `yaml:"tld_rules_url"`
	TLDRulesFile *string `yaml:"tld_rules_file"`

	InternalDomains  []string `yaml:"internal_domains"`
	LabelPrefix      *string  `yaml:"label_prefix"`
	CompanyLookupURL *string  `yaml:"company_lookup_url"`
	Timezone         *string  `yaml:"timezone"`

	Colorize           *bool `yaml:"colorize"`
	Blocker            *bool `yaml:"blocker"`
	MeetingToNote      *bool `yaml:"meeting_to_note"`
	KeepCancelledNotes *bool `yaml:"keep_cancelled_notes"`
	FullSync           *bool `yaml:"full_sync"`
	Debug              *bool `yaml:"debug"`

	RequestTimeout *string `yaml:"request_timeout"`
	LogLevel       *string `yaml:"log_level"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Source, file.Source)
	setString(&c.BaseURL, file.BaseURL)
	setString(&c.CalendarID, file.CalendarID)
	setString(&c.APIToken, file.APIToken)
	setString(&c.CredentialsFile, file.CredentialsFile)
	setString(&c.ICSURL, file.ICSURL)
	setString(&c.NotesDir, file.NotesDir)
	setString(&c.StatePath, file.StatePath)
	setString(&c.TLDRulesURL, file.TLDRulesURL)
	setString(&c.TLDRulesFile, file.TLDRulesFile)
	setString(&c.LabelPrefix, file.LabelPrefix)
	setString(&c.CompanyLookupURL, file.CompanyLookupURL)
	setString(&c.Timezone, file.Timezone)
	setString(&c.LogLevel, file.LogLevel)
	setBool(&c.Colorize, file.Colorize)
	setBool(&c.Blocker, file.Blocker)
	setBool(&c.MeetingToNote, file.MeetingToNote)
	setBool(&c.KeepCancelledNotes, file.KeepCancelledNotes)
	setBool(&c.FullSync, file.FullSync)
	setBool(&c.Debug, file.Debug)
	if len(file.InternalDomains) > 0 {
		c.InternalDomains = file.InternalDomains
	}
	if file.RequestTimeout != nil {
		d, err := time.ParseDuration(*file.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Source = getenvDefault("MNS_SOURCE", c.Source)
	c.BaseURL = getenvDefault("MNS_BASE_URL", c.BaseURL)
	c.CalendarID = getenvDefault("MNS_CALENDAR_ID", c.CalendarID)
	c.APIToken = getenvDefault("MNS_API_TOKEN", c.APIToken)
	c.CredentialsFile = getenvDefault("MNS_CREDENTIALS_FILE", c.CredentialsFile)
	c.ICSURL = getenvDefault("MNS_ICS_URL", c.ICSURL)
	c.NotesDir = getenvDefault("MNS_NOTES_DIR", c.NotesDir)
	c.StatePath = getenvDefault("MNS_STATE_PATH", c.StatePath)
	c.TLDRulesURL = getenvDefault("MNS_TLD_RULES_URL", c.TLDRulesURL)
	c.TLDRulesFile = getenvDefault("MNS_TLD_RULES_FILE", c.TLDRulesFile)
	c.LabelPrefix = getenvDefault("MNS_LABEL_PREFIX", c.LabelPrefix)
	c.CompanyLookupURL = getenvDefault("MNS_COMPANY_LOOKUP_URL", c.CompanyLookupURL)
	c.Timezone = getenvDefault("MNS_TIMEZONE", c.Timezone)
	c.LogLevel = getenvDefault("MNS_LOG_LEVEL", c.LogLevel)
	c.Colorize = getenvBool("MNS_COLORIZE", c.Colorize)
	c.Blocker = getenvBool("MNS_BLOCKER", c.Blocker)
	c.MeetingToNote = getenvBool("MNS_MEETING_TO_NOTE", c.MeetingToNote)
	c.KeepCancelledNotes = getenvBool("MNS_KEEP_CANCELLED_NOTES", c.KeepCancelledNotes)
	c.FullSync = getenvBool("MNS_FULL_SYNC", c.FullSync)
	c.Debug = getenvBool("MNS_DEBUG", c.Debug)
	c.RequestTimeout = getenvDuration("MNS_REQUEST_TIMEOUT", c.RequestTimeout)

	if value, ok := os.LookupEnv("MNS_INTERNAL_DOMAINS"); ok {
		var domains []string
		for _, d := range strings.Split(value, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		if len(domains) > 0 {
			c.InternalDomains = domains
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func getenvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenofnine/meeting-note-sync/internal/config"
)

func icsFeed(start time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:m1",
		"SUMMARY:Quarterly Review",
		"DTSTART:" + start.UTC().Format("20060102T150405Z"),
		"DTEND:" + start.Add(time.Hour).UTC().Format("20060102T150405Z"),
		"ORGANIZER:mailto:me@corp.com",
		"ATTENDEE:mailto:me@corp.com",
		"ATTENDEE;CN=Bob Smith:mailto:bob@acme.com",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}
	return strings.Join(lines, "\r\n")
}

func testConfig(t *testing.T, icsURL string) config.Config {
	t.Helper()
	rulesPath := filepath.Join(t.TempDir(), "suffixes.dat")
	require.NoError(t, os.WriteFile(rulesPath, []byte("com\n"), 0o644))
	return config.Config{
		Source:          "ics",
		ICSURL:          icsURL,
		NotesDir:        t.TempDir(),
		StatePath:       filepath.Join(t.TempDir(), "state.db"),
		TLDRulesFile:    rulesPath,
		InternalDomains: []string{"corp.com"},
		Timezone:        "UTC",
		Colorize:        true,
		Blocker:         true,
		MeetingToNote:   true,
		RequestTimeout:  5 * time.Second,
		LogLevel:        "info",
	}
}

func TestRunAgainstICSFeed(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/suggest" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[{"name":"Acme","domain":"acme.com"}]`)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		fmt.Fprint(w, icsFeed(start))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.CompanyLookupURL = srv.URL + "/suggest"
	a := New(cfg, nil)

	stats, err := a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotesCreated)

	name := start.UTC().Format("2006-01-02") + "_Quarterly_Review.md"
	content, err := os.ReadFile(filepath.Join(cfg.NotesDir, name))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Quarterly Review")
	assert.Contains(t, string(content), "[[Bob Smith]] bob@acme.com")

	// A second run updates rather than duplicates.
	stats, err = a.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotesUpdated)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, icsFeed(start))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.CompanyLookupURL = srv.URL + "/suggest"
	a := New(cfg, nil)

	stats, err := a.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotesCreated, "dry run counts the work it would do")

	entries, err := os.ReadDir(cfg.NotesDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunInvalidSource(t *testing.T) {
	cfg := testConfig(t, "https://example.test/a.ics")
	cfg.Source = "bogus"
	a := New(cfg, nil)

	_, err := a.Run(context.Background(), RunOptions{})
	require.Error(t, err)
}

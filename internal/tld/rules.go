package tld

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultRulesURL is the canonical public suffix list.
const DefaultRulesURL = "https://publicsuffix.org/list/effective_tld_names.dat"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RuleSet maps a dotted suffix to its effective TLD level: the number of
// trailing labels that together form the public suffix. A wildcard rule
// ("*.za") also claims a variable first label, an exception rule
// ("!city.kobe.jp") releases one.
type RuleSet struct {
	levels map[string]int
}

// ParseRules reads a line-oriented ruleset. The data is untrusted:
// comment lines, section markers and anything that does not look like a
// suffix are skipped rather than rejected.
func ParseRules(r io.Reader) (*RuleSet, error) {
	rs := &RuleSet{levels: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		// A suffix entry is the first whitespace-delimited token.
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			line = line[:i]
		}
		suffix := line
		adjust := 0
		switch {
		case strings.HasPrefix(suffix, "*."):
			suffix = strings.TrimPrefix(suffix, "*.")
			adjust = 1
		case strings.HasPrefix(suffix, "!"):
			suffix = strings.TrimPrefix(suffix, "!")
			adjust = -1
		}
		suffix = strings.ToLower(strings.Trim(suffix, "."))
		if suffix == "" || strings.ContainsAny(suffix, "*!") {
			continue
		}
		rs.levels[suffix] = strings.Count(suffix, ".") + 1 + adjust
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}
	return rs, nil
}

// Lookup returns the effective TLD level for an exact suffix.
func (rs *RuleSet) Lookup(suffix string) (int, bool) {
	level, ok := rs.levels[suffix]
	return level, ok
}

// Len reports how many suffix rules were loaded.
func (rs *RuleSet) Len() int { return len(rs.levels) }

// FetchRules downloads and parses the ruleset. Loaded once per process.
func FetchRules(ctx context.Context, url string, client HTTPDoer) (*RuleSet, error) {
	if url == "" {
		url = DefaultRulesURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rules: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rules: unexpected status %d", resp.StatusCode)
	}
	return ParseRules(resp.Body)
}

// LoadRulesFile parses a ruleset from a local file, for offline use.
func LoadRulesFile(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return ParseRules(f)
}

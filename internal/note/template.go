package note

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

const (
	dateTimeFormat = "2006-01-02 15:04"
	dateFormat     = "2006-01-02"
)

// AccountNamer resolves a root domain to a company name, typically
// backed by the accounts cache plus the suggest lookup. A miss is not
// an error.
type AccountNamer interface {
	CompanyName(ctx context.Context, domain string) (string, bool)
}

// Renderer materializes fresh note templates for meetings.
type Renderer struct {
	accounts AccountNamer
	loc      *time.Location
	caser    cases.Caser
}

func NewRenderer(accounts AccountNamer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{
		accounts: accounts,
		loc:      loc,
		caser:    cases.Title(language.Und, cases.NoLower),
	}
}

// Materialize renders the template for a meeting: frontmatter with the
// meeting dates and a fixed tag, the account/oppy/Attendees structured
// fields, and a heading carrying the title. The oppy field is rendered
// blank and never populated; Merge keeps a human-filled value intact.
func (r *Renderer) Materialize(ctx context.Context, m domain.MeetingEvent) string {
	start, end := r.formatDates(m.Timing)

	header := strings.Join([]string{
		Delimiter,
		`start_date: "` + start + `"`,
		`end_date: "` + end + `"`,
		"tags:",
		"  - meeting",
		Delimiter,
	}, "\n")

	account := "account::"
	if links := r.accountLinks(ctx, m); len(links) > 0 {
		account += " " + strings.Join(links, ",")
	}

	parts := []string{
		header,
		account,
		"oppy::",
		attendeesField(r.caser, m),
		"# " + m.Title,
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func (r *Renderer) formatDates(t domain.Timing) (start, end string) {
	if t.AllDay {
		d := t.Date.In(r.loc).Format(dateFormat)
		return d, d
	}
	return t.Start.In(r.loc).Format(dateTimeFormat), t.End.In(r.loc).Format(dateTimeFormat)
}

// accountLinks resolves the unique root domains of external attendees
// to linked company names, silently dropping domains without a match.
func (r *Renderer) accountLinks(ctx context.Context, m domain.MeetingEvent) []string {
	var links []string
	seen := make(map[string]bool)
	for _, a := range m.Attendees {
		if !a.External || a.RootDomain == "" || seen[a.RootDomain] {
			continue
		}
		seen[a.RootDomain] = true
		if r.accounts == nil {
			continue
		}
		if name, ok := r.accounts.CompanyName(ctx, a.RootDomain); ok {
			links = append(links, "[["+name+"]]")
		}
	}
	return links
}

func attendeesField(caser cases.Caser, m domain.MeetingEvent) string {
	var lines []string
	for _, a := range m.Attendees {
		if a.Self {
			continue
		}
		lines = append(lines, "- "+formatAttendee(caser, a))
	}
	if len(lines) == 0 {
		return "Attendees::"
	}
	return "Attendees::\n" + strings.Join(lines, "\n")
}

// formatAttendee renders "[[Display Name]] address", deriving a name
// from the address's local part when the calendar carries none.
func formatAttendee(caser cases.Caser, a domain.Attendee) string {
	name := strings.TrimSpace(a.DisplayName)
	if name == "" {
		local, _, _ := strings.Cut(a.Address, "@")
		parts := strings.FieldsFunc(local, func(r rune) bool {
			return r == '.' || r == '_' || r == '-'
		})
		if len(parts) > 2 {
			parts = parts[:2]
		}
		name = strings.Join(parts, " ")
	}
	return "[[" + caser.String(name) + "]] " + a.Address
}

// Package meeting builds the per-run view of a calendar event:
// deduplicated attendees with internal/external classification, a
// sanitized title, and the note filename derived from both.
package meeting

import (
	"strings"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
	"github.com/sevenofnine/meeting-note-sync/internal/tld"
)

type Builder struct {
	resolver *tld.Resolver
	loc      *time.Location
}

func NewBuilder(resolver *tld.Resolver, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{resolver: resolver, loc: loc}
}

// Enrich returns a copy of the event with a sanitized title and a
// deduplicated attendee list (declared attendees plus creator and
// organizer) classified against the domain resolver.
func (b *Builder) Enrich(ev domain.MeetingEvent) domain.MeetingEvent {
	ev.Title = FormatTitle(ev.Title)

	seen := make(map[string]bool)
	var attendees []domain.Attendee
	add := func(a domain.Attendee) {
		addr := strings.ToLower(strings.TrimSpace(a.Address))
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		a.RootDomain = b.resolver.RootDomain(a.Address)
		a.External = b.resolver.External(a.Address)
		attendees = append(attendees, a)
	}
	for _, a := range ev.Attendees {
		add(a)
	}
	add(ev.Creator)
	add(ev.Organizer)

	ev.Attendees = attendees
	return ev
}

// FormatTitle strips characters that are unsafe in filenames and wiki
// links, and spells out the ampersand.
func FormatTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '|', '#', '<', '>', '[', ']':
			return -1
		}
		return r
	}, title)
	return strings.TrimSpace(strings.ReplaceAll(title, "&", "and"))
}

// FileName is the note filename for a meeting, date-prefixed so the
// archive sorts chronologically: 2024-01-15_Quarterly_Review.md.
func (b *Builder) FileName(ev domain.MeetingEvent) string {
	date := ev.Timing.StartTime().In(b.loc).Format("2006-01-02")
	return date + "_" + strings.ReplaceAll(FormatTitle(ev.Title), " ", "_") + ".md"
}

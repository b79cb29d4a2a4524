package domain

import "time"

type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusCancelled EventStatus = "cancelled"
	StatusTentative EventStatus = "tentative"
)

// Extended field keys linking a meeting to the artifacts created for it.
const (
	FieldBlockerID = "blockerId"
	FieldNoteID    = "noteId"
)

// Calendar color tags applied by the colorize step.
const (
	ColorExternal = "flamingo"
	ColorOneToOne = "sage"
)

// Timing is the start/end variant of a meeting: either a whole-day date
// or a timed start/end pair. Use AllDayOn or TimedBetween to construct.
type Timing struct {
	AllDay bool
	Date   time.Time
	Start  time.Time
	End    time.Time
}

func AllDayOn(date time.Time) Timing {
	return Timing{AllDay: true, Date: date}
}

func TimedBetween(start, end time.Time) Timing {
	return Timing{Start: start, End: end}
}

// StartTime returns the moment the meeting begins regardless of variant.
func (t Timing) StartTime() time.Time {
	if t.AllDay {
		return t.Date
	}
	return t.Start
}

type Attendee struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
	Self        bool   `json:"self,omitempty"`

	// Derived each run from the TLD resolver, never persisted.
	RootDomain string `json:"root_domain,omitempty"`
	External   bool   `json:"external,omitempty"`
}

// MeetingEvent is an immutable per-fetch snapshot of one calendar event.
// ExtendedFields is the durable cross-reference store holding blocker
// and note ids from earlier runs.
type MeetingEvent struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Status         EventStatus       `json:"status"`
	Timing         Timing            `json:"timing"`
	Attendees      []Attendee        `json:"attendees,omitempty"`
	Organizer      Attendee          `json:"organizer"`
	Creator        Attendee          `json:"creator"`
	ExtendedFields map[string]string `json:"extended_fields,omitempty"`
}

// ExtendedField returns the value stored under key, or "" when absent.
func (m MeetingEvent) ExtendedField(key string) string {
	if m.ExtendedFields == nil {
		return ""
	}
	return m.ExtendedFields[key]
}

// HasExternal reports whether at least one attendee is from outside the
// configured organization.
func (m MeetingEvent) HasExternal() bool {
	for _, a := range m.Attendees {
		if a.External {
			return true
		}
	}
	return false
}

// OneToOne reports a two-person meeting, counting the deduplicated
// attendee list that already includes organizer and creator.
func (m MeetingEvent) OneToOne() bool {
	return len(m.Attendees) == 2
}

// SyncCursor is the resumption state of the synchronization protocol.
// PageToken is only meaningful inside an in-progress sync cycle; a full
// resync clears both fields before starting.
type SyncCursor struct {
	SyncToken string
	PageToken string
}

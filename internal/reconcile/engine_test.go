package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

func allOn() *Engine {
	return NewEngine(Options{Colorize: true, Blocker: true, MeetingToNote: true})
}

func timedMeeting(attendees ...domain.Attendee) domain.MeetingEvent {
	return domain.MeetingEvent{
		ID:     "m1",
		Title:  "Roadmap",
		Status: domain.StatusConfirmed,
		Timing: domain.TimedBetween(
			time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC),
		),
		Attendees: attendees,
	}
}

func kinds(actions []Action) []Kind {
	out := make([]Kind, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Kind)
	}
	return out
}

var (
	self     = domain.Attendee{Address: "me@corp.example.com", Self: true}
	internal = domain.Attendee{Address: "colleague@corp.example.com"}
	external = domain.Attendee{Address: "jane@acme.com", RootDomain: "acme.com", External: true}
)

func TestPlaceholderIgnoredEntirely(t *testing.T) {
	m := timedMeeting(self, external)
	m.Title = PlaceholderTitle
	actions := allOn().Reconcile(m, true, true)
	assert.Equal(t, []Kind{Ignore}, kinds(actions), "the engine must not reconcile its own blockers")
}

func TestCancelledRemovesExistingArtifacts(t *testing.T) {
	m := timedMeeting(self, external)
	m.Status = domain.StatusCancelled

	assert.Equal(t, []Kind{RemoveBlocker, RemoveNote}, kinds(allOn().Reconcile(m, true, true)))
	assert.Equal(t, []Kind{RemoveNote}, kinds(allOn().Reconcile(m, true, false)))
	assert.Empty(t, allOn().Reconcile(m, false, false), "nothing to remove is a no-op, not an error")
}

func TestCancelledNeverCreates(t *testing.T) {
	cases := []domain.MeetingEvent{
		timedMeeting(self, external),
		timedMeeting(self, internal),
		timedMeeting(self, internal, external),
	}
	for _, m := range cases {
		m.Status = domain.StatusCancelled
		for _, a := range allOn().Reconcile(m, false, false) {
			assert.NotEqual(t, CreateBlocker, a.Kind)
			assert.NotEqual(t, CreateNote, a.Kind)
			assert.NotEqual(t, Colorize, a.Kind)
		}
	}
}

func TestExternalAllDaySkips(t *testing.T) {
	m := timedMeeting(self, external)
	m.Timing = domain.AllDayOn(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	actions := allOn().Reconcile(m, false, false)
	assert.Equal(t, []Kind{Colorize, SkipAllDay}, kinds(actions))
}

func TestExternalTimedCreatesBoth(t *testing.T) {
	actions := allOn().Reconcile(timedMeeting(self, external), false, false)
	assert.Equal(t, []Kind{Colorize, CreateBlocker, CreateNote}, kinds(actions))
	assert.Equal(t, domain.ColorExternal, actions[0].Color)
}

func TestReconcileIdempotent(t *testing.T) {
	m := timedMeeting(self, external)
	for i := 0; i < 2; i++ {
		actions := allOn().Reconcile(m, true, true)
		assert.Equal(t, []Kind{Colorize, SkipBlocker, UpdateNote}, kinds(actions))
	}
}

func TestInternalOneToOneNoteOnly(t *testing.T) {
	actions := allOn().Reconcile(timedMeeting(self, internal), false, false)
	assert.Equal(t, []Kind{Colorize, CreateNote}, kinds(actions))
	assert.Equal(t, domain.ColorOneToOne, actions[0].Color)

	actions = allOn().Reconcile(timedMeeting(self, internal), true, false)
	assert.Equal(t, []Kind{Colorize, UpdateNote}, kinds(actions))
}

func TestInternalGroupIgnored(t *testing.T) {
	other := domain.Attendee{Address: "third@corp.example.com"}
	actions := allOn().Reconcile(timedMeeting(self, internal, other), false, false)
	assert.Equal(t, []Kind{Ignore}, kinds(actions))
}

func TestZeroAttendeesIgnored(t *testing.T) {
	actions := allOn().Reconcile(timedMeeting(), false, false)
	assert.Equal(t, []Kind{Ignore}, kinds(actions))
}

func TestDisabledFeatures(t *testing.T) {
	e := NewEngine(Options{Colorize: false, Blocker: false, MeetingToNote: true})
	actions := e.Reconcile(timedMeeting(self, external), false, false)
	assert.Equal(t, []Kind{CreateNote}, kinds(actions))

	e = NewEngine(Options{Blocker: true})
	actions = e.Reconcile(timedMeeting(self, external), false, false)
	assert.Equal(t, []Kind{CreateBlocker}, kinds(actions))

	m := timedMeeting(self, external)
	m.Status = domain.StatusCancelled
	e = NewEngine(Options{MeetingToNote: true})
	assert.Equal(t, []Kind{RemoveNote}, kinds(e.Reconcile(m, true, true)))
}

// Package sync drives the synchronization protocol: fetching changed
// meetings from the calendar and applying the reconciliation decisions
// to blockers, colors and the note archive.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/calendar"
	"github.com/sevenofnine/meeting-note-sync/internal/domain"
	"github.com/sevenofnine/meeting-note-sync/internal/meeting"
	"github.com/sevenofnine/meeting-note-sync/internal/note"
	"github.com/sevenofnine/meeting-note-sync/internal/reconcile"
)

// blockerDuration is the length of the follow-up placeholder appended
// to external meetings.
const blockerDuration = 10 * time.Minute

// DocumentStore is the note archive the executor writes to.
type DocumentStore interface {
	Create(name, content string) (string, error)
	Read(id string) (string, error)
	Write(id, name, content string) error
	Trash(id string) error
	ByID(id string) (string, bool, error)
	IDByName(name string) (string, bool, error)
}

// Stats counts the side effects of one sync run.
type Stats struct {
	BlockersCreated int
	BlockersRemoved int
	NotesCreated    int
	NotesUpdated    int
	NotesRemoved    int
	Colorized       int
	Skipped         int
	Ignored         int
	Errors          int
}

// Executor applies reconciliation actions for one meeting at a time.
// A nil event store marks a read-only source: blocker and color
// mutations degrade to log lines while note handling stays active.
type Executor struct {
	events        calendar.EventStore
	notes         DocumentStore
	builder       *meeting.Builder
	renderer      *note.Renderer
	engine        *reconcile.Engine
	keepCancelled bool
	dryRun        bool
	log           *slog.Logger

	stats Stats
}

type ExecutorOptions struct {
	Events   calendar.EventStore
	Notes    DocumentStore
	Builder  *meeting.Builder
	Renderer *note.Renderer
	Engine   *reconcile.Engine

	// KeepCancelledNotes marks the note as cancelled instead of
	// trashing it when the meeting is cancelled.
	KeepCancelledNotes bool
	// DryRun logs every mutation instead of performing it.
	DryRun bool

	Logger *slog.Logger
}

func NewExecutor(opts ExecutorOptions) *Executor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		events:        opts.Events,
		notes:         opts.Notes,
		builder:       opts.Builder,
		renderer:      opts.Renderer,
		engine:        opts.Engine,
		keepCancelled: opts.KeepCancelledNotes,
		dryRun:        opts.DryRun,
		log:           log,
	}
}

// Stats returns the counters accumulated since the executor was built.
func (e *Executor) Stats() Stats {
	return e.stats
}

// Apply enriches one fetched meeting, decides what it needs and
// performs the resulting actions. Failures inside a single action are
// returned so the caller can count them and move on to the next
// meeting.
func (e *Executor) Apply(ctx context.Context, raw domain.MeetingEvent) error {
	m := e.builder.Enrich(raw)
	if m.Title == reconcile.PlaceholderTitle {
		e.stats.Ignored++
		return nil
	}

	blockerID, blockerDesc, hasBlocker := e.resolveBlocker(ctx, m)
	if m.Title == "" && blockerDesc != "" {
		// Cancelled events can arrive stripped of their title; the
		// blocker's description preserves it for the note lookup.
		m.Title = meeting.FormatTitle(blockerDesc)
	}
	filename := e.builder.FileName(m)
	noteID, hasNote := e.resolveNote(m, filename)

	actions := e.engine.Reconcile(m, hasNote, hasBlocker)
	for _, action := range actions {
		if err := e.perform(ctx, m, action, filename, blockerID, noteID); err != nil {
			return fmt.Errorf("%s for meeting %s: %w", action.Kind, m.ID, err)
		}
	}
	return nil
}

func (e *Executor) perform(ctx context.Context, m domain.MeetingEvent, action reconcile.Action, filename, blockerID, noteID string) error {
	switch action.Kind {
	case reconcile.CreateBlocker:
		return e.createBlocker(ctx, m)
	case reconcile.SkipBlocker:
		e.log.Debug("blocker already present", "meeting", m.ID)
		e.stats.Skipped++
		return nil
	case reconcile.RemoveBlocker:
		return e.removeBlocker(ctx, m, blockerID)
	case reconcile.CreateNote:
		return e.createNote(ctx, m, filename)
	case reconcile.UpdateNote:
		return e.updateNote(ctx, m, filename, noteID)
	case reconcile.RemoveNote:
		return e.removeNote(m, noteID)
	case reconcile.Colorize:
		return e.colorize(ctx, m, action.Color)
	case reconcile.SkipAllDay:
		e.log.Info("skipping all-day external meeting", "meeting", m.ID, "title", m.Title)
		e.stats.Skipped++
		return nil
	case reconcile.Ignore:
		e.stats.Ignored++
		return nil
	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}
}

func (e *Executor) createBlocker(ctx context.Context, m domain.MeetingEvent) error {
	start := m.Timing.End
	end := start.Add(blockerDuration)
	if e.dryRun {
		e.log.Info("dry run: would create blocker", "meeting", m.ID, "start", start)
		e.stats.BlockersCreated++
		return nil
	}
	if e.events == nil {
		e.log.Warn("event source is read-only, blocker not created", "meeting", m.ID)
		return nil
	}
	blocker, err := e.events.CreateEvent(ctx, reconcile.PlaceholderTitle, start, end, m.Title)
	if err != nil {
		return err
	}
	if err := e.events.SetExtendedField(ctx, m.ID, domain.FieldBlockerID, blocker.ID); err != nil {
		return err
	}
	e.log.Info("blocker created", "meeting", m.ID, "blocker", blocker.ID)
	e.stats.BlockersCreated++
	return nil
}

func (e *Executor) removeBlocker(ctx context.Context, m domain.MeetingEvent, blockerID string) error {
	if blockerID == "" {
		return nil
	}
	if e.dryRun {
		e.log.Info("dry run: would remove blocker", "meeting", m.ID, "blocker", blockerID)
		e.stats.BlockersRemoved++
		return nil
	}
	if err := e.events.DeleteEvent(ctx, blockerID); err != nil {
		return err
	}
	e.log.Info("blocker removed", "meeting", m.ID, "blocker", blockerID)
	e.stats.BlockersRemoved++
	return nil
}

func (e *Executor) createNote(ctx context.Context, m domain.MeetingEvent, filename string) error {
	if e.dryRun {
		e.log.Info("dry run: would create note", "meeting", m.ID, "name", filename)
		e.stats.NotesCreated++
		return nil
	}
	id, err := e.notes.Create(filename, e.renderer.Materialize(ctx, m))
	if err != nil {
		return err
	}
	e.setField(ctx, m.ID, domain.FieldNoteID, id)
	e.log.Info("note created", "meeting", m.ID, "note", id, "name", filename)
	e.stats.NotesCreated++
	return nil
}

func (e *Executor) updateNote(ctx context.Context, m domain.MeetingEvent, filename, noteID string) error {
	if e.dryRun {
		e.log.Info("dry run: would update note", "meeting", m.ID, "note", noteID)
		e.stats.NotesUpdated++
		return nil
	}
	existing, err := e.notes.Read(noteID)
	if err != nil {
		return err
	}
	merged := note.Merge(existing, e.renderer.Materialize(ctx, m))
	if err := e.notes.Write(noteID, filename, merged); err != nil {
		return err
	}
	if m.ExtendedField(domain.FieldNoteID) != noteID {
		e.setField(ctx, m.ID, domain.FieldNoteID, noteID)
	}
	e.log.Info("note updated", "meeting", m.ID, "note", noteID)
	e.stats.NotesUpdated++
	return nil
}

func (e *Executor) removeNote(m domain.MeetingEvent, noteID string) error {
	if e.dryRun {
		e.log.Info("dry run: would remove note", "meeting", m.ID, "note", noteID)
		e.stats.NotesRemoved++
		return nil
	}
	if e.keepCancelled {
		existing, err := e.notes.Read(noteID)
		if err != nil {
			return err
		}
		name, _, err := e.notes.ByID(noteID)
		if err != nil {
			return err
		}
		if err := e.notes.Write(noteID, name, note.MarkCancelled(existing)); err != nil {
			return err
		}
		e.log.Info("note marked cancelled", "meeting", m.ID, "note", noteID)
	} else {
		if err := e.notes.Trash(noteID); err != nil {
			return err
		}
		e.log.Info("note trashed", "meeting", m.ID, "note", noteID)
	}
	e.stats.NotesRemoved++
	return nil
}

func (e *Executor) colorize(ctx context.Context, m domain.MeetingEvent, color string) error {
	if e.events == nil {
		return nil
	}
	current, err := e.events.EventByID(ctx, m.ID)
	if err != nil {
		e.log.Warn("color check failed", "meeting", m.ID, "error", err)
		return nil
	}
	if current.Color != "" {
		return nil
	}
	if e.dryRun {
		e.log.Info("dry run: would colorize", "meeting", m.ID, "color", color)
		e.stats.Colorized++
		return nil
	}
	if err := e.events.SetColor(ctx, m.ID, color); err != nil {
		return err
	}
	e.stats.Colorized++
	return nil
}

// setField records an artifact link on the calendar event. The link is
// an optimization over the name-based fallback lookup, so failures are
// logged rather than surfaced.
func (e *Executor) setField(ctx context.Context, eventID, key, value string) {
	if e.events == nil || e.dryRun {
		return
	}
	if err := e.events.SetExtendedField(ctx, eventID, key, value); err != nil {
		e.log.Warn("recording artifact link failed", "meeting", eventID, "key", key, "error", err)
	}
}

// resolveBlocker finds the blocker event for a meeting, first by the
// recorded id, then by searching the blocker's time slot. It returns
// the blocker's id, its description and whether it exists. A recorded
// id that no longer resolves counts as absent.
func (e *Executor) resolveBlocker(ctx context.Context, m domain.MeetingEvent) (id, description string, ok bool) {
	if e.events == nil {
		return "", "", false
	}
	if recorded := m.ExtendedField(domain.FieldBlockerID); recorded != "" {
		blocker, err := e.events.EventByID(ctx, recorded)
		if err != nil {
			e.log.Warn("recorded blocker not found", "meeting", m.ID, "blocker", recorded, "error", err)
		} else {
			return blocker.ID, blocker.Description, true
		}
	}
	if m.Timing.AllDay || m.Timing.End.IsZero() {
		return "", "", false
	}
	candidates, err := e.events.FindEvents(ctx, m.Timing.End, m.Timing.End.Add(blockerDuration), reconcile.PlaceholderTitle)
	if err != nil {
		e.log.Warn("blocker search failed", "meeting", m.ID, "error", err)
		return "", "", false
	}
	for _, c := range candidates {
		if m.Title == "" || c.Description == m.Title {
			return c.ID, c.Description, true
		}
	}
	return "", "", false
}

// resolveNote finds the note document for a meeting, first by the
// recorded id, then by the expected filename.
func (e *Executor) resolveNote(m domain.MeetingEvent, filename string) (string, bool) {
	if recorded := m.ExtendedField(domain.FieldNoteID); recorded != "" {
		if _, ok, err := e.notes.ByID(recorded); err != nil {
			e.log.Warn("note lookup failed", "note", recorded, "error", err)
		} else if ok {
			return recorded, true
		} else {
			e.log.Warn("recorded note no longer exists", "meeting", m.ID, "note", recorded)
		}
	}
	id, ok, err := e.notes.IDByName(filename)
	if err != nil {
		e.log.Warn("note search failed", "name", filename, "error", err)
		return "", false
	}
	return id, ok
}

// Package reconcile maps one meeting's lifecycle state to the
// idempotent side effects that keep its blocker and note artifacts in
// line with it.
package reconcile

import "github.com/sevenofnine/meeting-note-sync/internal/domain"

type Kind string

const (
	CreateBlocker Kind = "create_blocker"
	SkipBlocker   Kind = "skip_blocker"
	RemoveBlocker Kind = "remove_blocker"
	CreateNote    Kind = "create_note"
	UpdateNote    Kind = "update_note"
	RemoveNote    Kind = "remove_note"
	Colorize      Kind = "colorize"
	SkipAllDay    Kind = "skip_all_day"
	Ignore        Kind = "ignore"
)

// Action is one side-effect decision. Color is set only for Colorize.
type Action struct {
	Kind  Kind
	Color string
}

// PlaceholderTitle is the literal title of blocker events. Meetings
// carrying it are the engine's own artifacts and are never reconciled.
const PlaceholderTitle = "block"

// Engine computes actions for a meeting given whether artifacts from a
// previous run exist. The existence checks gate Create against
// Update/Skip: the engine is re-entered on every sync, including full
// resyncs of a window that re-surfaces events already processed, and
// must not duplicate blockers or clobber note edits.
type Engine struct {
	colorize bool
	blocker  bool
	notes    bool
}

type Options struct {
	Colorize      bool
	Blocker       bool
	MeetingToNote bool
}

func NewEngine(opts Options) *Engine {
	return &Engine{colorize: opts.Colorize, blocker: opts.Blocker, notes: opts.MeetingToNote}
}

// Reconcile classifies the meeting and returns the actions to perform,
// first match wins:
//
//  1. placeholder title: ignore entirely
//  2. cancelled: remove whatever artifacts exist, create nothing
//  3. external all-day: informational skip, blocker timing is
//     meaningless for a day without hours
//  4. external timed: blocker create/skip plus note create/update
//  5. internal two-person: note only
//  6. internal group or degenerate zero-attendee event: ignore
func (e *Engine) Reconcile(m domain.MeetingEvent, hasNote, hasBlocker bool) []Action {
	if m.Title == PlaceholderTitle {
		return []Action{{Kind: Ignore}}
	}

	if m.Status == domain.StatusCancelled {
		var actions []Action
		if e.blocker && hasBlocker {
			actions = append(actions, Action{Kind: RemoveBlocker})
		}
		if e.notes && hasNote {
			actions = append(actions, Action{Kind: RemoveNote})
		}
		return actions
	}

	var actions []Action
	if e.colorize {
		if color := colorFor(m); color != "" {
			actions = append(actions, Action{Kind: Colorize, Color: color})
		}
	}

	switch {
	case m.HasExternal():
		if m.Timing.AllDay {
			return append(actions, Action{Kind: SkipAllDay})
		}
		if e.blocker {
			if hasBlocker {
				actions = append(actions, Action{Kind: SkipBlocker})
			} else {
				actions = append(actions, Action{Kind: CreateBlocker})
			}
		}
		if e.notes {
			actions = append(actions, noteAction(hasNote))
		}
	case m.OneToOne():
		if e.notes {
			actions = append(actions, noteAction(hasNote))
		}
	default:
		actions = append(actions, Action{Kind: Ignore})
	}
	return actions
}

func noteAction(hasNote bool) Action {
	if hasNote {
		return Action{Kind: UpdateNote}
	}
	return Action{Kind: CreateNote}
}

func colorFor(m domain.MeetingEvent) string {
	switch {
	case m.HasExternal():
		return domain.ColorExternal
	case m.OneToOne():
		return domain.ColorOneToOne
	default:
		return ""
	}
}

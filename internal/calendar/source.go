// Package calendar defines the event-source and event-store interfaces
// the sync loop runs against, plus the HTTP and ICS implementations.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

// ErrSyncTokenExpired signals that the server invalidated the stored
// sync token and the caller must fall back to a full resync. It is the
// only retryable fetch failure.
var ErrSyncTokenExpired = errors.New("sync token is no longer valid, a full sync is required")

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// QueryOptions selects either an incremental delta (SyncToken set) or a
// bounded window (TimeMin/TimeMax). PageToken continues a paginated
// listing in both modes.
type QueryOptions struct {
	SyncToken  string
	TimeMin    time.Time
	TimeMax    time.Time
	PageToken  string
	MaxResults int
}

// Page is one page of changed events. NextSyncToken is only present on
// the final page of a cycle.
type Page struct {
	Events        []domain.MeetingEvent
	NextPageToken string
	NextSyncToken string
}

// EventSource lists changed meetings.
type EventSource interface {
	Name() string
	Query(ctx context.Context, opts QueryOptions) (Page, error)
}

// Event is a calendar-side handle on an event used for blocker
// management and colorization.
type Event struct {
	ID          string
	Title       string
	Description string
	Color       string
	Start       time.Time
	End         time.Time
}

// EventStore mutates calendar events: blockers, colors and the
// extended fields that link a meeting to its artifacts.
type EventStore interface {
	CreateEvent(ctx context.Context, title string, start, end time.Time, description string) (Event, error)
	EventByID(ctx context.Context, id string) (Event, error)
	FindEvents(ctx context.Context, start, end time.Time, titleFilter string) ([]Event, error)
	SetColor(ctx context.Context, id, color string) error
	DeleteEvent(ctx context.Context, id string) error
	SetExtendedField(ctx context.Context, eventID, key, value string) error
}

// NotSupportedError marks an operation an event source cannot perform,
// such as writes against a read-only ICS feed.
type NotSupportedError struct {
	Operation string
}

var ErrNotSupported = errors.New("operation not supported by event source")

func (e NotSupportedError) Error() string {
	if e.Operation == "" {
		return ErrNotSupported.Error()
	}
	return fmt.Sprintf("%s: %v", e.Operation, ErrNotSupported)
}

func (e NotSupportedError) Unwrap() error {
	return ErrNotSupported
}

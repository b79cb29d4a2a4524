package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/calendar"
	"github.com/sevenofnine/meeting-note-sync/internal/state"
)

const (
	// fullSyncWindow bounds a full resync to the near future.
	fullSyncWindow = 5 * 24 * time.Hour
	// pageSize keeps individual fetches small so a crash mid-cycle
	// loses little progress.
	pageSize = 10
	// maxPages bounds one run; a longer backlog resumes from the
	// persisted page token on the next run.
	maxPages = 5
)

// CursorStore persists the sync protocol's resumption state.
type CursorStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Coordinator owns one calendar's synchronization cycle. It prefers
// incremental deltas against a stored sync token and falls back to a
// bounded full resync when the token is missing or rejected. The
// fallback happens at most once per run.
type Coordinator struct {
	source calendar.EventSource
	cursor CursorStore
	exec   *Executor
	dryRun bool
	now    func() time.Time
	log    *slog.Logger
}

type CoordinatorOptions struct {
	Source   calendar.EventSource
	Cursor   CursorStore
	Executor *Executor
	// DryRun leaves the persisted cursor untouched.
	DryRun bool
	// Now overrides the clock, for tests.
	Now    func() time.Time
	Logger *slog.Logger
}

func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		source: opts.Source,
		cursor: opts.Cursor,
		exec:   opts.Executor,
		dryRun: opts.DryRun,
		now:    now,
		log:    log,
	}
}

// Sync runs one synchronization cycle and returns the accumulated
// side-effect counters. forceFull discards the stored tokens first.
func (c *Coordinator) Sync(ctx context.Context, forceFull bool) (Stats, error) {
	var syncToken, pageToken string
	if forceFull {
		// Ignore stored tokens outright; clearCursor only handles
		// persistence and is a no-op on dry runs.
		if err := c.clearCursor(); err != nil {
			return c.exec.Stats(), err
		}
	} else {
		var err error
		if syncToken, err = c.cursor.Get(state.KeySyncToken); err != nil {
			return c.exec.Stats(), err
		}
		if pageToken, err = c.cursor.Get(state.KeyPageToken); err != nil {
			return c.exec.Stats(), err
		}
	}

	err := c.runCycle(ctx, syncToken, pageToken)
	if errors.Is(err, calendar.ErrSyncTokenExpired) {
		c.log.Warn("sync token rejected, falling back to full resync", "source", c.source.Name())
		if cerr := c.clearCursor(); cerr != nil {
			return c.exec.Stats(), cerr
		}
		err = c.runCycle(ctx, "", "")
	}
	return c.exec.Stats(), err
}

func (c *Coordinator) runCycle(ctx context.Context, syncToken, pageToken string) error {
	opts := calendar.QueryOptions{MaxResults: pageSize, PageToken: pageToken}
	if syncToken != "" {
		opts.SyncToken = syncToken
		c.log.Info("incremental sync", "source", c.source.Name())
	} else {
		now := c.now()
		opts.TimeMin = now
		opts.TimeMax = now.Add(fullSyncWindow)
		c.log.Info("full sync", "source", c.source.Name(), "from", opts.TimeMin, "to", opts.TimeMax)
	}

	seen := make(map[string]bool)
	for page := 0; page < maxPages; page++ {
		p, err := c.source.Query(ctx, opts)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}

		for _, ev := range p.Events {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			if err := c.exec.Apply(ctx, ev); err != nil {
				c.log.Error("reconciliation failed", "meeting", ev.ID, "error", err)
				c.exec.stats.Errors++
			}
		}

		if err := c.persistCursor(p); err != nil {
			return err
		}
		if p.NextPageToken == "" {
			return nil
		}
		opts.PageToken = p.NextPageToken
	}

	c.log.Info("page budget exhausted, resuming next run", "source", c.source.Name())
	return nil
}

// persistCursor records progress after every page so an interrupted
// cycle resumes where it stopped. The sync token is only replaced when
// the source hands out a new one.
func (c *Coordinator) persistCursor(p calendar.Page) error {
	if c.dryRun {
		return nil
	}
	if p.NextPageToken != "" {
		if err := c.cursor.Set(state.KeyPageToken, p.NextPageToken); err != nil {
			return err
		}
	} else if err := c.cursor.Delete(state.KeyPageToken); err != nil {
		return err
	}
	if p.NextSyncToken != "" {
		if err := c.cursor.Set(state.KeySyncToken, p.NextSyncToken); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) clearCursor() error {
	if c.dryRun {
		return nil
	}
	if err := c.cursor.Delete(state.KeySyncToken); err != nil {
		return err
	}
	return c.cursor.Delete(state.KeyPageToken)
}

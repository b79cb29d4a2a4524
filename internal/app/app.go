// Package app wires the configuration into a runnable sync cycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sevenofnine/meeting-note-sync/internal/auth"
	"github.com/sevenofnine/meeting-note-sync/internal/calendar"
	"github.com/sevenofnine/meeting-note-sync/internal/company"
	"github.com/sevenofnine/meeting-note-sync/internal/config"
	"github.com/sevenofnine/meeting-note-sync/internal/domain"
	"github.com/sevenofnine/meeting-note-sync/internal/meeting"
	"github.com/sevenofnine/meeting-note-sync/internal/note"
	"github.com/sevenofnine/meeting-note-sync/internal/notes"
	"github.com/sevenofnine/meeting-note-sync/internal/reconcile"
	"github.com/sevenofnine/meeting-note-sync/internal/state"
	"github.com/sevenofnine/meeting-note-sync/internal/sync"
	"github.com/sevenofnine/meeting-note-sync/internal/tld"
)

type Application struct {
	cfg config.Config
	log *slog.Logger
}

type RunOptions struct {
	// ForceFull discards the stored sync token before running.
	ForceFull bool
	// DryRun logs every mutation instead of performing it.
	DryRun bool
}

func New(cfg config.Config, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	return &Application{cfg: cfg, log: logger}
}

// Run executes one synchronization cycle.
func (a *Application) Run(ctx context.Context, opts RunOptions) (sync.Stats, error) {
	loc, err := loadLocation(a.cfg.Timezone)
	if err != nil {
		return sync.Stats{}, err
	}

	httpClient := &http.Client{Timeout: a.cfg.RequestTimeout}

	resolver, err := a.buildResolver(ctx, httpClient)
	if err != nil {
		return sync.Stats{}, err
	}

	store, err := state.Open(a.cfg.StatePath)
	if err != nil {
		return sync.Stats{}, err
	}
	defer store.Close()

	docs, err := notes.NewStore(a.cfg.NotesDir, store)
	if err != nil {
		return sync.Stats{}, err
	}

	source, events, err := a.buildSource(httpClient, loc)
	if err != nil {
		return sync.Stats{}, err
	}

	directory := company.NewDirectory(
		store,
		company.NewClearbitClient(a.cfg.CompanyLookupURL, httpClient),
		a.cfg.LabelPrefix,
		a.log,
	)

	exec := sync.NewExecutor(sync.ExecutorOptions{
		Events:   events,
		Notes:    docs,
		Builder:  meeting.NewBuilder(resolver, loc),
		Renderer: note.NewRenderer(directory, loc),
		Engine: reconcile.NewEngine(reconcile.Options{
			Colorize:      a.cfg.Colorize,
			Blocker:       a.cfg.Blocker,
			MeetingToNote: a.cfg.MeetingToNote,
		}),
		KeepCancelledNotes: a.cfg.KeepCancelledNotes,
		DryRun:             opts.DryRun,
		Logger:             a.log,
	})

	coord := sync.NewCoordinator(sync.CoordinatorOptions{
		Source:   source,
		Cursor:   store,
		Executor: exec,
		DryRun:   opts.DryRun,
		Logger:   a.log,
	})
	return coord.Sync(ctx, opts.ForceFull)
}

// RenderNote materializes the note template for an ad-hoc meeting,
// backing the note render command. The meeting is enriched the same
// way a fetched one would be.
func (a *Application) RenderNote(ctx context.Context, m domain.MeetingEvent) (string, error) {
	loc, err := loadLocation(a.cfg.Timezone)
	if err != nil {
		return "", err
	}

	httpClient := &http.Client{Timeout: a.cfg.RequestTimeout}
	resolver, err := a.buildResolver(ctx, httpClient)
	if err != nil {
		return "", err
	}

	store, err := state.Open(a.cfg.StatePath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	directory := company.NewDirectory(
		store,
		company.NewClearbitClient(a.cfg.CompanyLookupURL, httpClient),
		a.cfg.LabelPrefix,
		a.log,
	)

	enriched := meeting.NewBuilder(resolver, loc).Enrich(m)
	return note.NewRenderer(directory, loc).Materialize(ctx, enriched), nil
}

// Resolver builds the domain resolver alone, for the resolve command.
func (a *Application) Resolver(ctx context.Context) (*tld.Resolver, error) {
	client := &http.Client{Timeout: a.cfg.RequestTimeout}
	return a.buildResolver(ctx, client)
}

func (a *Application) buildResolver(ctx context.Context, client *http.Client) (*tld.Resolver, error) {
	var rules *tld.RuleSet
	var err error
	if a.cfg.TLDRulesFile != "" {
		rules, err = tld.LoadRulesFile(a.cfg.TLDRulesFile)
	} else {
		rules, err = tld.FetchRules(ctx, a.cfg.TLDRulesURL, client)
	}
	if err != nil {
		return nil, fmt.Errorf("load suffix rules: %w", err)
	}
	a.log.Debug("suffix rules loaded", "rules", rules.Len())
	return tld.NewResolver(rules, a.cfg.InternalDomains), nil
}

func (a *Application) buildSource(client *http.Client, loc *time.Location) (calendar.EventSource, calendar.EventStore, error) {
	switch a.cfg.Source {
	case "api":
		token, err := a.apiToken()
		if err != nil {
			return nil, nil, err
		}
		api := calendar.NewAPIClient(a.cfg.BaseURL, a.cfg.CalendarID, token, client)
		return api, api, nil
	case "ics":
		// ICS feeds are read-only: notes sync works, blockers and
		// colors degrade to log lines.
		return calendar.NewICSSource(a.cfg.ICSURL, client, loc), nil, nil
	default:
		return nil, nil, fmt.Errorf("invalid source: %s", a.cfg.Source)
	}
}

func (a *Application) apiToken() (string, error) {
	if a.cfg.APIToken != "" {
		return a.cfg.APIToken, nil
	}
	creds, err := auth.Store{Path: a.cfg.CredentialsFile}.Load(os.Getenv("MNS_PASSPHRASE"))
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	return creds.APIToken, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	return loc, nil
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevenofnine/meeting-note-sync/internal/app"
	"github.com/sevenofnine/meeting-note-sync/internal/domain"
)

// NoteRenderOptions holds flags for the note render command.
type NoteRenderOptions struct {
	*RootOptions
	Title     string
	Start     string
	Duration  time.Duration
	AllDay    bool
	Attendees []string
}

// NewNoteCommand creates the note command group.
func NewNoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Note utilities",
	}
	cmd.AddCommand(newNoteRenderCommand(rootOpts))
	return cmd
}

// newNoteRenderCommand creates the render subcommand, printing the
// template that would be written for an ad-hoc meeting.
func newNoteRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NoteRenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the materialized note template for a meeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}

			m := domain.MeetingEvent{ID: "preview", Title: opts.Title}
			if opts.AllDay {
				date, err := time.Parse("2006-01-02", opts.Start)
				if err != nil {
					return fmt.Errorf("parse start date: %w", err)
				}
				m.Timing = domain.AllDayOn(date)
			} else {
				start, err := time.Parse("2006-01-02 15:04", opts.Start)
				if err != nil {
					return fmt.Errorf("parse start time: %w", err)
				}
				m.Timing = domain.TimedBetween(start, start.Add(opts.Duration))
			}
			for _, address := range opts.Attendees {
				m.Attendees = append(m.Attendees, domain.Attendee{Address: address})
			}

			rendered, err := app.New(cfg, logger).RenderNote(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "meeting title (required)")
	cmd.Flags().StringVar(&opts.Start, "start", "", `start, "2006-01-02 15:04" or "2006-01-02" with --all-day (required)`)
	cmd.Flags().DurationVar(&opts.Duration, "duration", 30*time.Minute, "meeting length")
	cmd.Flags().BoolVar(&opts.AllDay, "all-day", false, "treat start as a whole day")
	cmd.Flags().StringArrayVar(&opts.Attendees, "attendee", nil, "attendee email address (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

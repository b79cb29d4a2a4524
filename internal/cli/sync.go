package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevenofnine/meeting-note-sync/internal/app"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Full   bool
	DryRun bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization cycle",
		Long: `Fetch changed meetings and reconcile their artifacts. Uses the
stored sync token for an incremental run when one exists, otherwise
scans the next five days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts.RootOptions)
			if err != nil {
				return err
			}

			stats, err := app.New(cfg, logger).Run(cmd.Context(), app.RunOptions{
				ForceFull: opts.Full || cfg.FullSync,
				DryRun:    opts.DryRun || cfg.Debug,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"blockers: %d created, %d removed\nnotes: %d created, %d updated, %d removed\ncolorized: %d, skipped: %d, errors: %d\n",
				stats.BlockersCreated, stats.BlockersRemoved,
				stats.NotesCreated, stats.NotesUpdated, stats.NotesRemoved,
				stats.Colorized, stats.Skipped, stats.Errors,
			)
			if stats.Errors > 0 {
				return fmt.Errorf("%d meetings failed to reconcile", stats.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Full, "full", false, "discard the sync token and rescan the window")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "log mutations instead of performing them")

	return cmd
}

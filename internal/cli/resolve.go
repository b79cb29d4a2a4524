package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevenofnine/meeting-note-sync/internal/app"
	"github.com/sevenofnine/meeting-note-sync/internal/tld"
)

// NewResolveCommand creates the resolve command, a debugging aid that
// shows how an address classifies against the suffix rules.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <address>",
		Short: "Show the root domain and classification of an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			resolver, err := app.New(cfg, logger).Resolver(cmd.Context())
			if err != nil {
				return err
			}

			address := args[0]
			fmt.Fprintf(cmd.OutOrStdout(), "address:     %s\n", address)
			fmt.Fprintf(cmd.OutOrStdout(), "domain:      %s\n", tld.Domain(address))
			fmt.Fprintf(cmd.OutOrStdout(), "root domain: %s\n", resolver.RootDomain(address))
			fmt.Fprintf(cmd.OutOrStdout(), "external:    %t\n", resolver.External(address))
			return nil
		},
	}
}

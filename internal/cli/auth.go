package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevenofnine/meeting-note-sync/internal/auth"
)

// AuthInitOptions holds flags for the auth init command.
type AuthInitOptions struct {
	*RootOptions
	Token      string
	CalendarID string
	Output     string
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Credential utilities",
	}
	cmd.AddCommand(newAuthInitCommand(rootOpts))
	return cmd
}

// newAuthInitCommand creates the init subcommand, sealing the API
// credentials into an encrypted file that MNS_CREDENTIALS_FILE can
// point to. The passphrase comes from MNS_PASSPHRASE so it never
// appears on the command line.
func newAuthInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthInitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seal API credentials into an encrypted file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := os.Getenv("MNS_PASSPHRASE")
			if passphrase == "" {
				return errors.New("MNS_PASSPHRASE is required")
			}
			token := opts.Token
			if token == "" {
				token = os.Getenv("MNS_API_TOKEN")
			}
			if token == "" {
				return errors.New("either --token or MNS_API_TOKEN is required")
			}

			store := auth.Store{Path: opts.Output}
			creds := auth.Credentials{APIToken: token, CalendarID: opts.CalendarID}
			if err := store.Save(creds, passphrase); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credentials written to %s\n", opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "calendar API token (defaults to MNS_API_TOKEN)")
	cmd.Flags().StringVar(&opts.CalendarID, "calendar-id", "", "calendar id to store alongside the token")
	cmd.Flags().StringVar(&opts.Output, "output", "credentials.enc", "path of the encrypted credentials file")

	return cmd
}

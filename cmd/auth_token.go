package cmd

import (
	"fmt"

	"iasctl/internal/cli"
	"iasctl/internal/session"
	"iasctl/internal/tokenstore"

	"github.com/spf13/cobra"
)

// authTokenCmd represents the auth token command
var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token",
	Long: `Print a valid access token for the configured Industrial App Store,
renewing it first if it has expired.

The token is the only thing written to stdout, so the command can be used
in scripts:

  curl -H "Authorization: Bearer $(iasctl auth token)" https://...

Exits with code 2 when there is no session and 3 when renewal failed.`,
	RunE: runAuthToken,
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	_, mgr, err := setupSession()
	if err != nil {
		return err
	}

	token, err := requireAccessToken(cmd, mgr)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

// requireAccessToken returns a usable access token or the CLI error that
// explains why there is none.
func requireAccessToken(cmd *cobra.Command, mgr *session.Manager) (string, error) {
	token, err := mgr.GetAccessToken(cmd.Context())
	if tokenstore.IsRefreshError(err) {
		return "", &cli.AuthFailedError{Host: mgr.Host(), Reason: err}
	}
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", &cli.AuthRequiredError{Host: mgr.Host()}
	}
	return token, nil
}

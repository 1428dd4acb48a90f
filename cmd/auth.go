package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Industrial App Store session",
	Long: `Manage the Industrial App Store session used by iasctl.

Tokens are obtained with the OAuth device flow and stored encrypted under
the configuration directory, one file per Industrial App Store host.

Examples:
  iasctl auth login                    # Sign in (reuses a valid session)
  iasctl auth login --force            # Always start a new device flow
  iasctl auth status                   # Show session status
  iasctl auth status --watch           # Follow session changes
  iasctl auth token                    # Print an access token for scripts
  iasctl auth whoami                   # Show identity claims of the token
  iasctl auth logout                   # Remove the stored session`,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Long: `Remove the stored session for the configured Industrial App Store.

Signing out when no session exists is not an error.`,
	RunE: runAuthLogout,
}

// authPrint prints output only if the --quiet flag is not set.
// Use this for progress messages and non-essential output.
func authPrint(cmd *cobra.Command, format string, args ...interface{}) {
	if !quietOutput {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(cmd *cobra.Command, a ...interface{}) {
	if !quietOutput {
		fmt.Fprintln(cmd.OutOrStdout(), a...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authTokenCmd)
	authCmd.AddCommand(authWhoamiCmd)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	_, mgr, err := setupSession()
	if err != nil {
		return err
	}

	if err := mgr.SignOut(cmd.Context()); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	authPrint(cmd, "Signed out of %s\n", mgr.Host())
	return nil
}

package cmd

import (
	"iasctl/internal/cli"

	"github.com/spf13/cobra"
)

var whoamiOutput string

// authWhoamiCmd represents the auth whoami command
var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity claims of the stored access token",
	Long: `Show the claims carried by the stored access token.

The token is decoded locally and its signature is not verified; the output
is informational only. Opaque (non-JWT) tokens have no claims to show.`,
	RunE: runAuthWhoami,
}

func init() {
	authWhoamiCmd.Flags().StringVarP(&whoamiOutput, "output", "o", "table", "Output format (table, json, yaml)")
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(whoamiOutput)
	if err != nil {
		return err
	}
	_, mgr, err := setupSession()
	if err != nil {
		return err
	}

	token, err := mgr.CurrentToken(cmd.Context())
	if err != nil {
		return err
	}
	if token == nil {
		return &cli.AuthRequiredError{Host: mgr.Host()}
	}

	claims, ok := cli.DecodeClaims(token.AccessToken)
	if !ok {
		authPrintln(cmd, "The access token is opaque and carries no readable claims.")
		return nil
	}

	out := cmd.OutOrStdout()
	if format == cli.OutputFormatTable {
		cli.PrintClaimsTable(out, claims)
		return nil
	}
	return cli.WriteStructured(out, format, claims)
}

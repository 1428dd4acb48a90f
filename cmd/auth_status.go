package cmd

import (
	"context"
	"time"

	"iasctl/internal/cli"
	"iasctl/internal/session"

	"github.com/spf13/cobra"
)

// Status-specific flags
var (
	statusOutput   string
	statusTemplate string
	statusWatch    bool
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Long: `Show the stored session for the configured Industrial App Store.

The status is read from the stored token set as-is; this command never
renews an expired access token.

Templates use Go template syntax with the sprig function library and
receive a value with the fields .Host, .SignedIn, .ExpiresAt,
.HasRefreshToken and .TokenFile.

Examples:
  iasctl auth status
  iasctl auth status -o json
  iasctl auth status --template '{{ .Host }}: {{ .SignedIn }}'
  iasctl auth status --watch`,
	RunE: runAuthStatus,
}

func init() {
	authStatusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table, json, yaml)")
	authStatusCmd.Flags().StringVar(&statusTemplate, "template", "", "Render with a Go template instead of --output")
	authStatusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Keep running and print the status whenever the session changes")
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(statusOutput)
	if err != nil {
		return err
	}
	_, mgr, err := setupSession()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	render := func() error {
		view, err := buildSessionView(ctx, mgr)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case statusTemplate != "":
			return cli.RenderTemplate(out, statusTemplate, view)
		case format == cli.OutputFormatTable:
			cli.PrintSessionTable(out, []cli.SessionView{view}, time.Now())
			return nil
		default:
			return cli.WriteStructured(out, format, view)
		}
	}

	if err := render(); err != nil {
		return err
	}
	if !statusWatch {
		return nil
	}

	changes := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := render(); err != nil {
				return err
			}
		}
	}
}

// buildSessionView describes the stored session without refreshing it.
func buildSessionView(ctx context.Context, mgr *session.Manager) (cli.SessionView, error) {
	view := cli.SessionView{
		Host:      mgr.Host(),
		TokenFile: mgr.TokenFilePath(),
	}

	info, err := mgr.GetSessionInfo(ctx)
	if err != nil {
		return cli.SessionView{}, err
	}
	if info == nil {
		return view, nil
	}

	view.SignedIn = true
	view.HasRefreshToken = info.HasRefreshToken
	if !info.ExpiresAt.IsZero() {
		expiresAt := info.ExpiresAt
		view.ExpiresAt = &expiresAt
	}
	return view, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"iasctl/internal/cli"
	"iasctl/internal/session"
	"iasctl/pkg/oauth"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Login-specific flags
var (
	loginForce         bool
	loginNoWaitSpinner bool
)

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Industrial App Store",
	Long: `Sign in to the Industrial App Store using the OAuth device flow.

iasctl prints a verification URL and a short code. Open the URL on any
device, enter the code and approve the request; iasctl waits until you do.

If a valid session already exists it is reused unless --force is given.

Examples:
  iasctl auth login
  iasctl auth login --force
  iasctl auth login --client-id my-client --scope DataRead --scope UserInfo`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginForce, "force", false, "Start a new device flow even if a valid session exists")
	authLoginCmd.Flags().BoolVar(&loginNoWaitSpinner, "no-wait-spinner", false, "Do not animate while waiting for approval")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForSignIn(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	mgr, err := newSessionManager(cfg)
	if err != nil {
		return err
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), "Waiting for approval...", quietOutput, !loginNoWaitSpinner)

	created, err := mgr.SignIn(cmd.Context(), func(ctx context.Context, pending oauth.PendingDeviceAuthorization) error {
		printDeviceInstructions(cmd.OutOrStdout(), pending, time.Now())
		progress.Start()
		return nil
	}, loginForce)
	if err != nil {
		progress.Fail("Sign-in failed")
		return signInError(mgr.Host(), err)
	}

	if !created {
		authPrint(cmd, "Already signed in to %s\n", mgr.Host())
		return nil
	}

	progress.Succeed("Signed in to " + mgr.Host())
	return nil
}

// printDeviceInstructions tells the user where to approve the sign-in. It
// is printed even in quiet mode: without it the sign-in cannot complete.
func printDeviceInstructions(w io.Writer, pending oauth.PendingDeviceAuthorization, now time.Time) {
	fmt.Fprintln(w, "To sign in, open:")
	fmt.Fprintf(w, "  %s\n", text.FgHiCyan.Sprint(pending.VerificationURI))
	fmt.Fprintf(w, "and enter the code: %s\n", text.Bold.Sprint(pending.UserCode))
	if pending.VerificationURIComplete != "" {
		fmt.Fprintf(w, "(or open %s to skip typing the code)\n", pending.VerificationURIComplete)
	}
	if !pending.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "The code expires %s.\n", cli.FormatExpiry(&pending.ExpiresAt, now))
	}
}

// signInError maps SignIn failures onto the CLI error types that decide
// the exit code. Cancellation is reported as is.
func signInError(host string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var denied *session.AuthorizationDeniedError
	var timeout *session.AuthorizationTimeoutError
	var perr *oauth.ProtocolError
	if errors.As(err, &denied) || errors.As(err, &timeout) || errors.As(err, &perr) {
		return &cli.AuthFailedError{Host: host, Reason: err}
	}
	return err
}

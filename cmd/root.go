package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"iasctl/internal/cli"
	"iasctl/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates there is no usable session.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates sign-in or token renewal failed.
	ExitCodeAuthFailed = 3
)

// Global flags.
var (
	configPath   string
	debugLogging bool
	quietOutput  bool
	appStoreURL  string
	clientID     string
	clientSecret string
	clientScopes []string
)

// rootCmd represents the base command for the iasctl application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "iasctl",
	Short: "Sign in to the Industrial App Store and call its APIs",
	Long: `iasctl signs in to the Intelligent Plant Industrial App Store using the
OAuth device flow, keeps the resulting tokens encrypted on disk, renews them
when they expire, and uses them to call Industrial App Store APIs.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelWarn
		if debugLogging {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// Interrupting the process cancels the running command, which aborts a
// pending sign-in without touching the stored session.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "iasctl version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config-path", defaultConfigPath(), "Configuration directory")
	flags.BoolVar(&debugLogging, "debug", false, "Enable debug logging on stderr")
	flags.BoolVarP(&quietOutput, "quiet", "q", false, "Suppress non-essential output")
	flags.StringVar(&appStoreURL, "app-store-url", "", "Industrial App Store URL (overrides appStore.url)")
	flags.StringVar(&clientID, "client-id", "", "OAuth client id (overrides client.id)")
	flags.StringVar(&clientSecret, "client-secret", "", "OAuth client secret (overrides client.secret)")
	flags.StringSliceVar(&clientScopes, "scope", nil, "OAuth scopes to request (overrides client.scopes)")
}

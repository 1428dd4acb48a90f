package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the command that prints the build version and the
// Go toolchain that produced the binary.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of iasctl",
		Long:  `Print the iasctl release version together with the Go version and platform it was built for.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "iasctl version %s (%s, %s/%s)\n",
				versionOrDev(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func versionOrDev() string {
	if rootCmd.Version == "" {
		return "dev"
	}
	return rootCmd.Version
}

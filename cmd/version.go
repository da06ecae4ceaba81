package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
// The version itself is injected into rootCmd by main.
func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dashtrack",
		Long: `Print the dashtrack release version.

With --verbose the Go toolchain version and the platform the binary was
built for are printed too.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dashtrack version %s\n", rootCmd.Version)
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "go: %s\nplatform: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print the Go version and platform")
	return cmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dashtrack/internal/services"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeStartupFailed indicates the store could not be brought up:
	// it never became healthy, or strict mode found it already running.
	ExitCodeStartupFailed = 3
)

// rootCmd represents the base command for the dashtrack application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashtrack",
	Short: "Track restaurant orders in a locally managed Redis store",
	Long: `dashtrack runs a Redis store in a local container, checks that it is
healthy, records restaurant orders in it and tears it down again when the
work is done. Orders can be imported in bulk through a pool of workers.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
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
// It executes the root command and maps the returned error to an exit code.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dashtrack version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		exitCode := getExitCode(err)
		if exitCode == ExitCodeStartupFailed {
			fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		}
		os.Exit(exitCode)
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if services.IsUnhealthy(err) || services.IsAlreadyRunning(err) {
		return ExitCodeStartupFailed
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

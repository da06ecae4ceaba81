package cmd

import (
	"context"
	"fmt"

	"dashtrack/internal/app"

	"github.com/spf13/cobra"
)

var (
	stopDebug      bool
	stopConfigPath string
)

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop and remove the store container",
	Long: `Stops and removes the store container, for example one left running by a
run that was killed. A stopped leftover container is removed as well.

Examples:
  dashtrack stop
  dashtrack stop --config-path ./config`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().BoolVar(&stopDebug, "debug", false, "Enable general debug logging")
	stopCmd.Flags().StringVar(&stopConfigPath, "config-path", "", "Custom configuration directory path")
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(stopDebug, false, stopConfigPath)
	cfg.Silent = true
	cfg.Output = cmd.OutOrStdout()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	name := application.Services().Store.GetName()
	stopped, err := application.StopStore(ctx)
	if err != nil {
		return err
	}

	if stopped {
		fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s\n", name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not running\n", name)
	}
	return nil
}

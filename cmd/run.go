package cmd

import (
	"context"
	"fmt"

	"dashtrack/internal/app"

	"github.com/spf13/cobra"
)

// runDebug enables verbose logging across the application.
var runDebug bool

// runStrict fails startup when the store container is already running
// instead of reusing it.
var runStrict bool

// runWorkers overrides workers.workers from the configuration.
var runWorkers int

// runImport is a YAML file of orders to save through the worker pool.
var runImport string

// runConfigPath specifies a custom configuration directory path.
// The directory should contain config.yaml.
var runConfigPath string

// runCmd starts the store, records orders and stops the store again.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the store, record orders and stop the store",
	Long: `Starts the Redis store container (or reuses a running one), waits until
it answers PING with the configured credentials, saves a sample order and
reads it back, then stops and removes the container.

With --import, every order in the given YAML file is saved through a pool of
workers, each holding its own store connection:

  orders:
    - restaurant_name: Pizza Place
      amount_spent_total: 50.75
      date_of_order: "2024-07-06"
      items:
        pizza: {quantity: 2, price_per_unit_quantity: 30}

Configuration:
  dashtrack loads config.yaml from ~/.config/dashtrack, or from the directory
  given with --config-path. A missing file means the defaults are used.

The store password comes from store.password, then the environment variable
named by store.passwordEnv (default REDIS_DT_PWD), then the default "test".

Exit codes: 0 on success, 3 when the store does not become healthy (or is
already running with --strict), 1 for any other failure.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// runRun is the main entry point for the run command
func runRun(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(runDebug, runStrict, runConfigPath)
	cfg.Workers = runWorkers
	cfg.ImportFile = runImport
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
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Enable general debug logging")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Fail if the store container is already running")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Number of import workers (capped by workers.maxWorkers)")
	runCmd.Flags().StringVar(&runImport, "import", "", "YAML file of orders to import")
	runCmd.Flags().StringVar(&runConfigPath, "config-path", "", "Custom configuration directory path")
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"dashtrack/internal/app"
	"dashtrack/internal/services"
	dtstrings "dashtrack/pkg/strings"
)

var (
	statusQuiet      bool
	statusDebug      bool
	statusConfigPath string
)

// statusCmd reports the store container state and health
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state and health of the store container",
	Long: `Inspects the store container without starting it. When the container is
running its health is checked with PING using the configured credentials.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&statusQuiet, "quiet", "q", false, "Suppress the progress spinner")
	statusCmd.Flags().BoolVar(&statusDebug, "debug", false, "Enable general debug logging")
	statusCmd.Flags().StringVar(&statusConfigPath, "config-path", "", "Custom configuration directory path")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(statusDebug, false, statusConfigPath)
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

	var s *spinner.Spinner
	if !statusQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Checking store..."
		s.Start()
	}

	status, err := application.Status(ctx)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	renderStatus(cmd.OutOrStdout(), status)
	return nil
}

// renderStatus writes the store status as a table.
func renderStatus(w io.Writer, status app.StoreStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("CONTAINER"),
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("STATE"),
		text.FgHiCyan.Sprint("ADDRESS"),
		text.FgHiCyan.Sprint("HEALTH"),
		text.FgHiCyan.Sprint("PASSWORD"),
	})

	t.AppendRow(table.Row{
		status.Name,
		status.Container,
		orDash(status.ContainerID),
		formatContainerState(status),
		orDash(status.Address),
		formatHealth(status.Health),
		status.PasswordSource,
	})
	t.Render()

	if status.HealthErr != nil {
		fmt.Fprintf(w, "%s %s\n", text.FgRed.Sprint("Health check failed:"),
			dtstrings.Truncate(status.HealthErr.Error(), dtstrings.DefaultMessageMaxLen))
	}
}

func formatContainerState(status app.StoreStatus) string {
	switch {
	case status.Running:
		return text.FgGreen.Sprint("running")
	case status.Exists:
		return text.FgYellow.Sprint("stopped")
	default:
		return text.FgHiBlack.Sprint("absent")
	}
}

func formatHealth(health services.HealthStatus) string {
	switch health {
	case services.HealthHealthy:
		return text.FgGreen.Sprint(string(health))
	case services.HealthUnhealthy:
		return text.FgRed.Sprint(string(health))
	default:
		return text.FgHiBlack.Sprint(string(health))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

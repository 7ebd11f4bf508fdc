package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/export"
)

var (
	exportURL        string
	exportUsername   string
	exportPassword   string
	exportScreenshot string
	exportTimeout    time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Publish a dashboard snapshot and print its link",
	Long: `Opens the dashboard in headless Chrome with basic auth, publishes a
snapshot through the share dialog and prints the resulting link.`,
	RunE: runExport,
}

func init() {
	bindExportFlags(exportCmd)
}

func bindExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&exportURL, "url", "", "Dashboard URL")
	cmd.Flags().StringVar(&exportUsername, "username", "", "Basic auth user")
	cmd.Flags().StringVar(&exportPassword, "password", "", "Basic auth password")
	cmd.Flags().StringVar(&exportScreenshot, "screenshot", "", "Store a full page PNG at this path")
	cmd.Flags().DurationVar(&exportTimeout, "timeout", 0, "Overall export timeout")
}

// applyExportFlags copies explicitly set flags over the configured values.
func applyExportFlags(cmd *cobra.Command, c *config.ExportConfig) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		c.DashboardURL = exportURL
	}
	if flags.Changed("username") {
		c.Username = exportUsername
	}
	if flags.Changed("password") {
		c.Password = exportPassword
	}
	if flags.Changed("screenshot") {
		c.Screenshot = exportScreenshot
	}
	if flags.Changed("timeout") {
		c.Timeout = exportTimeout
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	applyExportFlags(cmd, &cfg.Export)
	if err := cfg.ValidateExport(); err != nil {
		return err
	}

	exporter, err := export.NewExporter(export.OptionsFromConfig(cfg.Export))
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	link, err := exporter.Export(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

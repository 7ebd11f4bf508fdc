package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/logging"
)

const Version = "0.1.0"

var (
	configFile    string
	logLevelFlags []string // Supports multiple --log-level flags

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "meshprobe",
	Short: "meshprobe - end-to-end checks for service mesh console screens",
	Long: `meshprobe bundles the tooling around the service mesh console e2e suites:
a load generator for mesh-exposed workloads, a dashboard snapshot exporter and
fixture management for the scenario namespaces.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLog(logLevelFlags); err != nil {
			return err
		}
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logging.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to a YAML config file. Values can be overridden with MESHPROBE_* environment variables")

	// Supports per-package log levels: --log-level debug --log-level loadtest=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level loadtest=debug --log-level fixture=warn")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(fixtureCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLog initializes the logging system with parsed log level flags.
// Priority: CLI flags > Environment variables > Initialize default
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses CLI flags and environment variables
//
// CLI format: ["debug"], ["default=info", "loadtest=debug"], or ["info"]
// Env vars: LOG_LEVEL_LOADTEST=debug (package name uppercased, dots to underscores)
//
// Returns: (defaultLevel, packageLevels map, error)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, envPair := range os.Environ() {
		if !strings.HasPrefix(envPair, "LOG_LEVEL_") {
			continue
		}
		parts := strings.SplitN(envPair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		result[convertEnvKeyToPackageName(parts[0])] = parts[1]
	}

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		result[parts[0]] = parts[1]
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_BROWSER_SESSION -> browser.session
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

func validateLogLevel(level string) error {
	if !logging.ValidLevel(level) {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
	}
	return nil
}

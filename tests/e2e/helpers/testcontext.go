package helpers

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

// ConsoleURLEnv must point at a running console for UI scenarios to run.
const ConsoleURLEnv = config.EnvPrefix + "CONSOLE_URL"

// ConfigFileEnv optionally names a YAML config file for the suites.
const ConfigFileEnv = config.EnvPrefix + "CONFIG"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ConsoleEnv bundles what a UI scenario needs to reach the console and the
// cluster behind it.
type ConsoleEnv struct {
	Config    *config.Config
	Fixture   *fixture.Client
	Navigator *console.Navigator
}

// SetupConsoleEnv loads the suite configuration. The test is skipped in short
// mode and when no console URL is configured.
func SetupConsoleEnv(t *testing.T) *ConsoleEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}
	if os.Getenv(ConsoleURLEnv) == "" {
		t.Skipf("Skipping console e2e test, %s is not set", ConsoleURLEnv)
	}

	cfg, err := config.Load(os.Getenv(ConfigFileEnv))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateConsole(); err != nil {
		t.Fatalf("invalid console config: %v", err)
	}

	client, err := fixture.NewClient(cfg.Console.Kubeconfig, cfg.Console.Context)
	if err != nil {
		t.Fatalf("failed to create fixture client: %v", err)
	}

	nav, err := console.NewNavigator(cfg.Console.URL, client.CurrentContext())
	if err != nil {
		t.Fatalf("failed to create navigator: %v", err)
	}

	return &ConsoleEnv{Config: cfg, Fixture: client, Navigator: nav}
}

// ArtifactPath returns the screenshot path for a test below dir.
func ArtifactPath(dir, testName string) string {
	return filepath.Join(dir, unsafeFileChars.ReplaceAllString(testName, "_")+".png")
}

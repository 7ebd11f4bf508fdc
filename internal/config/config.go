package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all configuration for the suites and tools
type Config struct {
	Console ConsoleConfig `koanf:"console"`
	Browser BrowserConfig `koanf:"browser"`
	Load    LoadConfig    `koanf:"load"`
	Export  ExportConfig  `koanf:"export"`
}

// ConsoleConfig points at the web console under test and the cluster behind it.
type ConsoleConfig struct {
	// URL is the console address, e.g. http://localhost:3001
	URL string `koanf:"url"`

	// Kubeconfig is uploaded to the console and used by the fixture client
	Kubeconfig string `koanf:"kubeconfig"`

	// Context overrides the kubeconfig current-context
	Context string `koanf:"context"`
}

// BrowserConfig controls the playwright browser used by UI scenarios.
type BrowserConfig struct {
	Headless bool `koanf:"headless"`

	// SlowMo delays every browser operation, in milliseconds
	SlowMo float64 `koanf:"slow_mo"`

	// Timeout is the default timeout for element lookups
	Timeout time.Duration `koanf:"timeout"`

	// NavigationWait is the settle pause after each page visit
	NavigationWait time.Duration `koanf:"navigation_wait"`

	// ArtifactsDir receives screenshots of failed scenarios
	ArtifactsDir string `koanf:"artifacts_dir"`
}

// LoadConfig configures the load generator.
type LoadConfig struct {
	// Domain is the cluster domain; targets are https://hello.<domain>/...
	Domain string `koanf:"domain"`

	// VUs is the number of virtual users per scenario
	VUs int `koanf:"vus"`

	Duration     time.Duration `koanf:"duration"`
	GracefulStop time.Duration `koanf:"graceful_stop"`

	// RPS limits requests per second per VU; 0 means unlimited
	RPS float64 `koanf:"rps"`

	// Report is the path of the HTML summary
	Report string `koanf:"report"`

	// MetricsAddr exposes Prometheus metrics while running when set
	MetricsAddr string `koanf:"metrics_addr"`

	// Insecure skips TLS verification of the target
	Insecure bool `koanf:"insecure"`

	// OTLPEndpoint exports a span per request over OTLP gRPC when set
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPCAPath   string `koanf:"otlp_ca_path"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// ExportConfig configures the dashboard snapshot exporter.
type ExportConfig struct {
	DashboardURL   string        `koanf:"dashboard_url"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	ViewportWidth  int           `koanf:"viewport_width"`
	ViewportHeight int           `koanf:"viewport_height"`
	Timeout        time.Duration `koanf:"timeout"`

	// Screenshot stores a full page PNG when set
	Screenshot string `koanf:"screenshot"`
}

// Validate checks the settings shared by every command
func (c *Config) Validate() error {
	if c.Browser.Timeout <= 0 {
		return NewConfigError("browser.timeout must be positive")
	}
	if c.Browser.NavigationWait < 0 {
		return NewConfigError("browser.navigation_wait must not be negative")
	}
	if c.Browser.SlowMo < 0 {
		return NewConfigError("browser.slow_mo must not be negative")
	}
	return nil
}

// ValidateConsole checks the settings needed by UI scenarios and fixtures.
func (c *Config) ValidateConsole() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validateAbsoluteURL("console.url", c.Console.URL); err != nil {
		return err
	}
	if c.Console.Kubeconfig == "" {
		return NewConfigError("console.kubeconfig must not be empty")
	}
	return nil
}

// ValidateLoad checks the load generator settings.
func (c *Config) ValidateLoad() error {
	l := c.Load
	if l.Domain == "" {
		return NewConfigError("load.domain must not be empty")
	}
	if l.VUs < 1 {
		return NewConfigError("load.vus must be at least 1")
	}
	if l.Duration <= 0 {
		return NewConfigError("load.duration must be positive")
	}
	if l.GracefulStop < 0 {
		return NewConfigError("load.graceful_stop must not be negative")
	}
	if l.RPS < 0 {
		return NewConfigError("load.rps must not be negative")
	}
	if l.OTLPEndpoint == "" && (l.OTLPCAPath != "" || l.OTLPInsecure) {
		return NewConfigError("load.otlp_ca_path and load.otlp_insecure require load.otlp_endpoint")
	}
	return nil
}

// ValidateExport checks the exporter settings.
func (c *Config) ValidateExport() error {
	e := c.Export
	if err := validateAbsoluteURL("export.dashboard_url", e.DashboardURL); err != nil {
		return err
	}
	if e.ViewportWidth <= 0 || e.ViewportHeight <= 0 {
		return NewConfigError("export viewport must be positive")
	}
	if e.Timeout <= 0 {
		return NewConfigError("export.timeout must be positive")
	}
	return nil
}

func validateAbsoluteURL(key, raw string) error {
	if raw == "" {
		return NewConfigError(key + " must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewConfigError(fmt.Sprintf("%s is not a valid URL: %v", key, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewConfigError(fmt.Sprintf("%s must use http or https, got %q", key, raw))
	}
	if u.Host == "" {
		return NewConfigError(fmt.Sprintf("%s has no host: %q", key, raw))
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}

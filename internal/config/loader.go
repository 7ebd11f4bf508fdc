package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides: MESHPROBE_CONSOLE_URL -> console.url
const EnvPrefix = "MESHPROBE_"

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"browser.headless":        true,
		"browser.slow_mo":         0.0,
		"browser.timeout":         10 * time.Second,
		"browser.navigation_wait": 2 * time.Second,
		"browser.artifacts_dir":   "test-results",
		"load.vus":                100,
		"load.duration":           60 * time.Second,
		"load.graceful_stop":      30 * time.Second,
		"load.rps":                0.0,
		"load.report":             "summary.html",
		"export.username":         "admin",
		"export.password":         "admin",
		"export.viewport_width":   1080,
		"export.viewport_height":  1024,
		"export.timeout":          60 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing priority. Validation is left to the caller since
// every command needs a different section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// envKeyToPath maps MESHPROBE_LOAD_GRACEFUL_STOP to load.graceful_stop.
// Only the first underscore separates the section from the key.
func envKeyToPath(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Package browser wraps a playwright Chromium page with the interactions the
// console scenarios need: UI5 comboboxes, inputs, form groups and text checks.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/logging"
)

const (
	viewportWidth  = 1280
	viewportHeight = 720

	// comboboxSettle is the pause between typing into a combobox and picking
	// from its popover; the list is filtered asynchronously.
	comboboxSettle = 200 * time.Millisecond
	optionTimeout  = 10 * time.Second
)

// Options configure a Session.
type Options struct {
	Headless       bool
	SlowMo         float64
	Timeout        time.Duration
	NavigationWait time.Duration
}

// OptionsFromConfig maps the browser section of the configuration.
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	return Options{
		Headless:       cfg.Headless,
		SlowMo:         cfg.SlowMo,
		Timeout:        cfg.Timeout,
		NavigationWait: cfg.NavigationWait,
	}
}

// Session owns the playwright runtime, browser, context and page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	Page    playwright.Page

	opts   Options
	logger *logging.Logger
}

// NewSession launches Chromium and opens a page.
func NewSession(opts Options) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(opts.SlowMo),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  viewportWidth,
			Height: viewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	return &Session{
		pw:      pw,
		browser: browser,
		context: bctx,
		Page:    page,
		opts:    opts,
		logger:  logging.GetLogger("browser"),
	}, nil
}

// Close releases page, context, browser and the playwright driver.
func (s *Session) Close() error {
	var errs []error
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close page: %w", err))
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during cleanup: %v", errs)
	}
	return nil
}

// Screenshot stores a full page PNG, creating parent directories.
func (s *Session) Screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	s.logger.Info("screenshot saved to %s", path)
	return nil
}

// EnsureInstalled starts playwright once, installing the driver and Chromium
// when they are missing.
func EnsureInstalled() error {
	pw, err := playwright.Run()
	if err == nil {
		return pw.Stop()
	}

	logging.GetLogger("browser").Info("playwright not available, installing")
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright after installation: %w", err)
	}
	return pw.Stop()
}

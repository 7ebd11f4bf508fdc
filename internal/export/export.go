// Package export publishes a dashboard snapshot through the dashboard's share
// dialog in headless Chrome and returns the snapshot link.
package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/logging"
)

// Selectors locate the elements of the share flow.
type Selectors struct {
	ShareButton string
	// ShareButtonIndex picks among the elements matching ShareButton
	ShareButtonIndex int
	SnapshotTab      string
	PublishText      string
	SnapshotLink     string
}

// DefaultSelectors match the Grafana share dialog.
func DefaultSelectors() Selectors {
	return Selectors{
		ShareButton:      `button[class="css-orvko6"]`,
		ShareButtonIndex: 1,
		SnapshotTab:      `li[aria-label="Tab Snapshot"]`,
		PublishText:      "Publish to snapshot.raintank.io",
		SnapshotLink:     `a[class="large share-modal-link"]`,
	}
}

// Options configure an export.
type Options struct {
	DashboardURL   string
	Username       string
	Password       string
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration

	// Screenshot stores a full page PNG after publishing when set
	Screenshot string

	Selectors Selectors
}

// OptionsFromConfig maps the export section of the configuration.
func OptionsFromConfig(cfg config.ExportConfig) Options {
	return Options{
		DashboardURL:   cfg.DashboardURL,
		Username:       cfg.Username,
		Password:       cfg.Password,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		Timeout:        cfg.Timeout,
		Screenshot:     cfg.Screenshot,
		Selectors:      DefaultSelectors(),
	}
}

// BasicAuthHeader returns the Authorization header value for user and password.
func BasicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// Exporter drives headless Chrome through the share flow.
type Exporter struct {
	opts      Options
	allocOpts []chromedp.ExecAllocatorOption
	logger    *logging.Logger
}

func NewExporter(opts Options) (*Exporter, error) {
	if opts.DashboardURL == "" {
		return nil, fmt.Errorf("dashboard url is required")
	}
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}
	if opts.Selectors == (Selectors{}) {
		opts.Selectors = DefaultSelectors()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
	)

	return &Exporter{
		opts:      opts,
		allocOpts: allocOpts,
		logger:    logging.GetLogger("export"),
	}, nil
}

// Export publishes the snapshot and returns its link.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, e.allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	e.logger.InfoWithFields("exporting dashboard", logging.Field("url", e.opts.DashboardURL))

	var link string
	if err := chromedp.Run(browserCtx, e.tasks(&link)); err != nil {
		return "", fmt.Errorf("failed to publish snapshot: %w", err)
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("snapshot link is empty")
	}

	if e.opts.Screenshot != "" {
		if err := e.screenshot(browserCtx); err != nil {
			return link, err
		}
	}

	e.logger.InfoWithFields("snapshot published", logging.Field("link", link))
	return link, nil
}

func (e *Exporter) tasks(link *string) chromedp.Tasks {
	sel := e.opts.Selectors
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Authorization": BasicAuthHeader(e.opts.Username, e.opts.Password),
		}),
		chromedp.EmulateViewport(int64(e.opts.ViewportWidth), int64(e.opts.ViewportHeight)),
		chromedp.Navigate(e.opts.DashboardURL),
		chromedp.WaitVisible(sel.ShareButton, chromedp.ByQuery),
		clickNth(sel.ShareButton, sel.ShareButtonIndex),
		chromedp.WaitVisible(sel.SnapshotTab, chromedp.ByQuery),
		chromedp.Click(sel.SnapshotTab, chromedp.ByQuery),
		chromedp.Click(buttonWithText(sel.PublishText), chromedp.BySearch),
		chromedp.WaitVisible(sel.SnapshotLink, chromedp.ByQuery),
		chromedp.TextContent(sel.SnapshotLink, link, chromedp.ByQuery),
	}
}

func (e *Exporter) screenshot(ctx context.Context) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.opts.Screenshot), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(e.opts.Screenshot, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	e.logger.Info("screenshot saved to %s", e.opts.Screenshot)
	return nil
}

// clickNth clicks the index-th element matching the CSS selector.
func clickNth(selector string, index int) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll).Do(ctx); err != nil {
			return err
		}
		if index >= len(nodes) {
			return fmt.Errorf("%s matched %d elements, need index %d", selector, len(nodes), index)
		}
		return chromedp.MouseClickNode(nodes[index]).Do(ctx)
	})
}

func buttonWithText(text string) string {
	return fmt.Sprintf(`//button[contains(., %q)]`, text)
}

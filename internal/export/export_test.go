package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/meshprobe/internal/config"
)

const dashboardPage = `<!DOCTYPE html>
<html><body>
<button class="css-orvko6">Star</button>
<button class="css-orvko6" onclick="document.getElementById('tabs').style.display = 'block'">Share</button>
<ul id="tabs" style="display:none">
  <li aria-label="Tab Link">Link</li>
  <li aria-label="Tab Snapshot" onclick="document.getElementById('publish').style.display = 'block'">Snapshot</li>
</ul>
<div id="publish" style="display:none">
  <button onclick="publish()">Publish to snapshot.raintank.io</button>
</div>
<div id="result"></div>
<script>
  function publish() {
    setTimeout(function () {
      var a = document.createElement('a');
      a.className = 'large share-modal-link';
      a.href = '#';
      a.textContent = ' https://snapshots.raintank.io/dashboard/snapshot/abc123 ';
      document.getElementById('result').appendChild(a);
    }, 100);
  }
</script>
</body></html>`

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("chrome not available")
}

func newDashboardServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic YWRtaW46YWRtaW4=" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(dashboardPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBasicAuthHeader(t *testing.T) {
	assert.Equal(t, "Basic YWRtaW46YWRtaW4=", BasicAuthHeader("admin", "admin"))
	assert.Equal(t, "Basic dXNlcjpwQHNzOndvcmQ=", BasicAuthHeader("user", "p@ss:word"))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.ExportConfig{
		DashboardURL:   "https://grafana.example.com/d/abc",
		Username:       "admin",
		Password:       "admin",
		ViewportWidth:  1080,
		ViewportHeight: 1024,
		Timeout:        time.Minute,
	})
	assert.Equal(t, DefaultSelectors(), opts.Selectors)
	assert.Equal(t, 1080, opts.ViewportWidth)
	assert.Equal(t, 1, opts.Selectors.ShareButtonIndex)
}

func TestNewExporter_Validation(t *testing.T) {
	_, err := NewExporter(Options{ViewportWidth: 1080, ViewportHeight: 1024})
	assert.Error(t, err)

	_, err = NewExporter(Options{DashboardURL: "http://grafana", ViewportWidth: 0, ViewportHeight: 1024})
	assert.Error(t, err)

	e, err := NewExporter(Options{DashboardURL: "http://grafana", ViewportWidth: 1080, ViewportHeight: 1024})
	require.NoError(t, err)
	assert.Equal(t, DefaultSelectors(), e.opts.Selectors)
}

func TestButtonWithText(t *testing.T) {
	assert.Equal(t, `//button[contains(., "Publish to snapshot.raintank.io")]`, buttonWithText("Publish to snapshot.raintank.io"))
}

func TestExport(t *testing.T) {
	requireChrome(t)
	srv := newDashboardServer(t)

	screenshot := filepath.Join(t.TempDir(), "snapshot.png")
	e, err := NewExporter(Options{
		DashboardURL:   srv.URL,
		Username:       "admin",
		Password:       "admin",
		ViewportWidth:  1080,
		ViewportHeight: 1024,
		Timeout:        30 * time.Second,
		Screenshot:     screenshot,
	})
	require.NoError(t, err)

	link, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://snapshots.raintank.io/dashboard/snapshot/abc123", link)

	info, err := os.Stat(screenshot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExport_WrongCredentialsTimesOut(t *testing.T) {
	requireChrome(t)
	srv := newDashboardServer(t)

	e, err := NewExporter(Options{
		DashboardURL:   srv.URL,
		Username:       "admin",
		Password:       "wrong",
		ViewportWidth:  1080,
		ViewportHeight: 1024,
		Timeout:        3 * time.Second,
	})
	require.NoError(t, err)

	_, err = e.Export(context.Background())
	assert.Error(t, err)
}

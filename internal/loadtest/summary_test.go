package loadtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary() *Summary {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Summary{
		RunID:    "0b7e2f4c-1111-2222-3333-444455556666",
		Start:    start,
		End:      start.Add(time.Minute),
		VUs:      100,
		Duration: time.Minute,
		Scenarios: []ScenarioSummary{
			{
				Name: "get", Method: "GET", URL: "https://hello.example.com/headers", Trend: "get_request_duration",
				Stats:        TrendStats{Count: 10, Avg: 12 * time.Millisecond, Min: time.Millisecond, Med: 10 * time.Millisecond, Max: 40 * time.Millisecond, P90: 30 * time.Millisecond, P95: 35 * time.Millisecond},
				ChecksPassed: 10,
			},
			{
				Name: "post", Method: "POST", URL: "https://hello.example.com/post", Trend: "post_request_duration",
				Stats:        TrendStats{Count: 8, Avg: 20 * time.Millisecond},
				ChecksPassed: 6,
				ChecksFailed: 2,
			},
		},
	}
}

func TestSummaryTotals(t *testing.T) {
	s := testSummary()
	assert.Equal(t, 2, s.ChecksFailed())
	assert.Equal(t, 18, s.Requests())
}

func TestRenderHTML(t *testing.T) {
	html, err := testSummary().RenderHTML()
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "0b7e2f4c-1111-2222-3333-444455556666")
	assert.Contains(t, out, "get_request_duration")
	assert.Contains(t, out, "post_request_duration")
	assert.Contains(t, out, "12.00ms")
	assert.Contains(t, out, "is status 200")
	assert.Contains(t, out, `class="fail">2<`)
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary.html")
	require.NoError(t, testSummary().WriteHTML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>Load test summary</h1>")
}

func TestTable(t *testing.T) {
	out := testSummary().Table()
	assert.Contains(t, out, "get_request_duration")
	assert.Contains(t, out, "post_request_duration")
	assert.Contains(t, out, "p(95)")
	assert.Contains(t, out, "35.00ms")
	assert.Contains(t, out, "100 VUs")
}

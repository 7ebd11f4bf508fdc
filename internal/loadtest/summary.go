package loadtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/flosch/pongo2/v6"
)

// Summary is the result of a run.
type Summary struct {
	RunID     string
	Start     time.Time
	End       time.Time
	VUs       int
	Duration  time.Duration
	Scenarios []ScenarioSummary
}

// ScenarioSummary holds the trend and check results of one scenario.
type ScenarioSummary struct {
	Name         string
	Method       string
	URL          string
	Trend        string
	Stats        TrendStats
	ChecksPassed int
	ChecksFailed int

	// Interrupted counts iterations cancelled at the end of the graceful stop
	Interrupted int
}

// ChecksFailed sums failed checks across scenarios.
func (s *Summary) ChecksFailed() int {
	failed := 0
	for _, sc := range s.Scenarios {
		failed += sc.ChecksFailed
	}
	return failed
}

// Requests sums completed requests across scenarios.
func (s *Summary) Requests() int {
	total := 0
	for _, sc := range s.Scenarios {
		total += sc.Stats.Count
	}
	return total
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64) + "ms"
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Load test {{ run_id }}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.fail { color: #b91c1c; }
.pass { color: #15803d; }
</style>
</head>
<body>
<h1>Load test summary</h1>
<p>Run <code>{{ run_id }}</code>, {{ vus }} VUs per scenario for {{ duration }}, {{ start }} to {{ end }}.</p>
<h2>Trends</h2>
<table>
<tr><th>trend</th><th>count</th><th>avg</th><th>min</th><th>med</th><th>max</th><th>p(90)</th><th>p(95)</th></tr>
{% for sc in scenarios %}<tr><td>{{ sc.trend }}</td><td>{{ sc.count }}</td><td>{{ sc.avg }}</td><td>{{ sc.min }}</td><td>{{ sc.med }}</td><td>{{ sc.max }}</td><td>{{ sc.p90 }}</td><td>{{ sc.p95 }}</td></tr>
{% endfor %}</table>
<h2>Checks</h2>
<table>
<tr><th>scenario</th><th>check</th><th>passed</th><th>failed</th><th>interrupted</th></tr>
{% for sc in scenarios %}<tr><td>{{ sc.name }} {{ sc.method }} {{ sc.url }}</td><td>{{ check }}</td><td class="pass">{{ sc.passed }}</td><td{% if sc.failed > 0 %} class="fail"{% endif %}>{{ sc.failed }}</td><td>{{ sc.interrupted }}</td></tr>
{% endfor %}</table>
</body>
</html>
`

var reportTpl = pongo2.Must(pongo2.FromString(reportTemplate))

func (s *Summary) scenarioRows() []pongo2.Context {
	rows := make([]pongo2.Context, 0, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		rows = append(rows, pongo2.Context{
			"name":        sc.Name,
			"method":      sc.Method,
			"url":         sc.URL,
			"trend":       sc.Trend,
			"count":       sc.Stats.Count,
			"avg":         millis(sc.Stats.Avg),
			"min":         millis(sc.Stats.Min),
			"med":         millis(sc.Stats.Med),
			"max":         millis(sc.Stats.Max),
			"p90":         millis(sc.Stats.P90),
			"p95":         millis(sc.Stats.P95),
			"passed":      sc.ChecksPassed,
			"failed":      sc.ChecksFailed,
			"interrupted": sc.Interrupted,
		})
	}
	return rows
}

// RenderHTML renders the HTML report.
func (s *Summary) RenderHTML() ([]byte, error) {
	var buf bytes.Buffer
	err := reportTpl.ExecuteWriter(pongo2.Context{
		"run_id":    s.RunID,
		"vus":       s.VUs,
		"duration":  s.Duration.String(),
		"start":     s.Start.UTC().Format(time.RFC3339),
		"end":       s.End.UTC().Format(time.RFC3339),
		"check":     CheckName,
		"scenarios": s.scenarioRows(),
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the report to path.
func (s *Summary) WriteHTML(path string) error {
	html, err := s.RenderHTML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4FF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failStyle   = cellStyle.Foreground(lipgloss.Color("#EF4444"))
)

// failedColumn is the index of the "failed" column in Table.
const failedColumn = 9

// Table renders the summary as a terminal table.
func (s *Summary) Table() string {
	rows := make([][]string, 0, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		rows = append(rows, []string{
			sc.Trend,
			strconv.Itoa(sc.Stats.Count),
			millis(sc.Stats.Avg),
			millis(sc.Stats.Min),
			millis(sc.Stats.Med),
			millis(sc.Stats.Max),
			millis(sc.Stats.P90),
			millis(sc.Stats.P95),
			strconv.Itoa(sc.ChecksPassed),
			strconv.Itoa(sc.ChecksFailed),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("trend", "count", "avg", "min", "med", "max", "p(90)", "p(95)", "passed", "failed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == failedColumn && row >= 0 && row < len(rows) && rows[row][col] != "0" {
				return failStyle
			}
			return cellStyle
		})

	return fmt.Sprintf("run %s (%d VUs, %s)\n%s\n", s.RunID, s.VUs, s.Duration, t.Render())
}

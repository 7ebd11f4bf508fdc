package loadtest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/logging"
)

const (
	// maxLoggedBody caps the response body logged for a failed check.
	maxLoggedBody = 1024

	tracerName = "github.com/moolen/meshprobe/internal/loadtest"
)

// Options configure a run.
type Options struct {
	VUs          int
	Duration     time.Duration
	GracefulStop time.Duration

	// RPS limits each VU; 0 disables the limit
	RPS float64

	Insecure bool
}

// OptionsFromConfig maps the load section of the configuration.
func OptionsFromConfig(cfg config.LoadConfig) Options {
	return Options{
		VUs:          cfg.VUs,
		Duration:     cfg.Duration,
		GracefulStop: cfg.GracefulStop,
		RPS:          cfg.RPS,
		Insecure:     cfg.Insecure,
	}
}

// Runner executes scenarios with a constant number of VUs each.
type Runner struct {
	opts    Options
	client  *http.Client
	metrics *Metrics
	runID   string
	logger  *logging.Logger

	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewRunner creates a runner. metrics may be nil.
func NewRunner(opts Options, metrics *Metrics, runID string) (*Runner, error) {
	if opts.VUs <= 0 {
		return nil, fmt.Errorf("vus must be positive, got %d", opts.VUs)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}
	if opts.GracefulStop < 0 {
		return nil, fmt.Errorf("graceful stop must not be negative, got %s", opts.GracefulStop)
	}
	if opts.RPS < 0 {
		return nil, fmt.Errorf("rps must not be negative, got %v", opts.RPS)
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        opts.VUs * 4,
		MaxIdleConnsPerHost: opts.VUs * 2,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.Insecure}, //nolint:gosec // opt-in for self-signed cluster domains
	}

	return &Runner{
		opts:    opts,
		client:  &http.Client{Transport: transport},
		metrics: metrics,
		runID:   runID,
		logger:  logging.GetLogger("loadtest"),

		tracer:     noop.NewTracerProvider().Tracer(tracerName),
		propagator: propagation.TraceContext{},
	}, nil
}

// SetTracerProvider records a client span per request and propagates its
// trace context to the target.
func (r *Runner) SetTracerProvider(tp trace.TracerProvider) {
	r.tracer = tp.Tracer(tracerName)
}

// RunID identifies this run in logs, metrics and the report.
func (r *Runner) RunID() string {
	return r.runID
}

type scenarioState struct {
	scenario    Scenario
	trend       *Trend
	passed      atomic.Int64
	failed      atomic.Int64
	interrupted atomic.Int64
}

// Run starts all scenarios concurrently. After Duration no new iterations
// start; iterations still in flight get GracefulStop to finish before their
// requests are cancelled. Cancelling ctx aborts the run and returns the
// partial summary together with the context error.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Summary, error) {
	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios to run")
	}

	start := time.Now()
	stopAt := start.Add(r.opts.Duration)
	hardCtx, cancel := context.WithDeadline(ctx, stopAt.Add(r.opts.GracefulStop))
	defer cancel()

	r.logger.InfoWithFields("starting load test",
		logging.Field("run_id", r.runID),
		logging.Field("vus", r.opts.VUs),
		logging.Field("duration", r.opts.Duration.String()),
		logging.Field("scenarios", len(scenarios)),
	)

	states := make([]*scenarioState, len(scenarios))
	g := new(errgroup.Group)
	for i, sc := range scenarios {
		state := &scenarioState{scenario: sc, trend: NewTrend(sc.Trend)}
		states[i] = state
		for vu := 0; vu < r.opts.VUs; vu++ {
			g.Go(func() error {
				r.runVU(hardCtx, state, stopAt)
				return nil
			})
		}
	}
	_ = g.Wait()

	summary := &Summary{
		RunID:    r.runID,
		Start:    start,
		End:      time.Now(),
		VUs:      r.opts.VUs,
		Duration: r.opts.Duration,
	}
	for _, state := range states {
		summary.Scenarios = append(summary.Scenarios, ScenarioSummary{
			Name:         state.scenario.Name,
			Method:       state.scenario.Method,
			URL:          state.scenario.URL,
			Trend:        state.trend.Name(),
			Stats:        state.trend.Stats(),
			ChecksPassed: int(state.passed.Load()),
			ChecksFailed: int(state.failed.Load()),
			Interrupted:  int(state.interrupted.Load()),
		})
	}

	r.logger.InfoWithFields("load test finished",
		logging.Field("run_id", r.runID),
		logging.Field("checks_failed", summary.ChecksFailed()),
	)
	return summary, ctx.Err()
}

func (r *Runner) runVU(ctx context.Context, state *scenarioState, stopAt time.Time) {
	r.metrics.vuStarted()
	defer r.metrics.vuStopped()

	var limiter *rate.Limiter
	if r.opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.opts.RPS), 1)
	}

	for time.Now().Before(stopAt) && ctx.Err() == nil {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			if !time.Now().Before(stopAt) {
				return
			}
		}
		r.iterate(ctx, state)
	}
}

func (r *Runner) iterate(ctx context.Context, state *scenarioState) {
	sc := state.scenario

	ctx, span := r.tracer.Start(ctx, sc.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", sc.Method),
			attribute.String("url.full", sc.URL),
			attribute.String("meshprobe.run_id", r.runID),
		),
	)
	defer span.End()

	var body io.Reader
	if sc.Body != "" {
		body = strings.NewReader(sc.Body)
	}
	req, err := http.NewRequestWithContext(ctx, sc.Method, sc.URL, body)
	if err != nil {
		r.logger.Error("failed to build %s request: %v", sc.Name, err)
		span.SetStatus(codes.Error, err.Error())
		state.failed.Add(1)
		return
	}
	if sc.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	began := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			span.SetAttributes(attribute.Bool("meshprobe.interrupted", true))
			state.interrupted.Add(1)
			return
		}
		elapsed := time.Since(began)
		state.trend.Add(elapsed)
		state.failed.Add(1)
		r.metrics.observe(sc.Name, elapsed, false)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.WarnWithFields("request failed",
			logging.Field("scenario", sc.Name),
			logging.Field("error", err.Error()),
		)
		return
	}
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	elapsed := time.Since(began)

	if readErr != nil && ctx.Err() != nil {
		span.SetAttributes(attribute.Bool("meshprobe.interrupted", true))
		state.interrupted.Add(1)
		return
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	state.trend.Add(elapsed)
	passed := resp.StatusCode == http.StatusOK
	r.metrics.observe(sc.Name, elapsed, passed)
	if passed {
		state.passed.Add(1)
		return
	}
	state.failed.Add(1)
	span.SetStatus(codes.Error, CheckName+" failed")
	r.logger.WarnWithFields("check failed",
		logging.Field("scenario", sc.Name),
		logging.Field("check", CheckName),
		logging.Field("status", resp.StatusCode),
		logging.Field("body", string(respBody)),
	)
}

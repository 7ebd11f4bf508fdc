package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/loadtest"
	"github.com/moolen/meshprobe/internal/logging"
	"github.com/moolen/meshprobe/internal/tracing"
)

var (
	loadDomain       string
	loadVUs          int
	loadDuration     time.Duration
	loadGracefulStop time.Duration
	loadRPS          float64
	loadReport       string
	loadMetricsAddr  string
	loadInsecure     bool
	loadRunID        string
	loadOTLPEndpoint string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Generate HTTP load against the mesh-exposed hello service",
	Long: `Runs two scenarios concurrently against https://hello.<domain>:
a GET of /headers and a POST of /post, each with a constant number of virtual
users. Every response is checked for status 200. A text summary is printed and
an HTML report is written. The command fails when any check failed.`,
	RunE: runLoad,
}

func init() {
	bindLoadFlags(loadCmd)
}

func bindLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&loadDomain, "domain", "", "Cluster domain, targets are https://hello.<domain>")
	cmd.Flags().IntVar(&loadVUs, "vus", 0, "Virtual users per scenario")
	cmd.Flags().DurationVar(&loadDuration, "duration", 0, "Run duration")
	cmd.Flags().DurationVar(&loadGracefulStop, "graceful-stop", 0, "Time in-flight iterations get to finish after the duration")
	cmd.Flags().Float64Var(&loadRPS, "rps", 0, "Requests per second per VU, 0 is unlimited")
	cmd.Flags().StringVar(&loadReport, "report", "", "Path of the HTML summary")
	cmd.Flags().StringVar(&loadMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&loadInsecure, "insecure", false, "Skip TLS verification of the target")
	cmd.Flags().StringVar(&loadRunID, "run-id", "", "Run identifier, generated when empty")
	cmd.Flags().StringVar(&loadOTLPEndpoint, "otlp-endpoint", "", "Export a span per request to this OTLP gRPC endpoint")
}

// applyLoadFlags overrides the configuration with explicitly set flags only,
// so that config file and environment values survive flag defaults.
func applyLoadFlags(cmd *cobra.Command, c *config.LoadConfig) {
	flags := cmd.Flags()
	if flags.Changed("domain") {
		c.Domain = loadDomain
	}
	if flags.Changed("vus") {
		c.VUs = loadVUs
	}
	if flags.Changed("duration") {
		c.Duration = loadDuration
	}
	if flags.Changed("graceful-stop") {
		c.GracefulStop = loadGracefulStop
	}
	if flags.Changed("rps") {
		c.RPS = loadRPS
	}
	if flags.Changed("report") {
		c.Report = loadReport
	}
	if flags.Changed("metrics-addr") {
		c.MetricsAddr = loadMetricsAddr
	}
	if flags.Changed("insecure") {
		c.Insecure = loadInsecure
	}
	if flags.Changed("otlp-endpoint") {
		c.OTLPEndpoint = loadOTLPEndpoint
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger("load")

	applyLoadFlags(cmd, &cfg.Load)
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := loadRunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var (
		metrics  *loadtest.Metrics
		registry *prometheus.Registry
	)
	if cfg.Load.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = loadtest.NewMetrics(registry, runID)
	}

	runner, err := loadtest.NewRunner(loadtest.OptionsFromConfig(cfg.Load), metrics, runID)
	if err != nil {
		return err
	}

	tracer, err := tracing.NewProvider(ctx, tracing.ConfigFromLoad(cfg.Load, Version))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush spans: %v", err)
		}
	}()
	if tracer.IsEnabled() {
		runner.SetTracerProvider(tracer.TracerProvider())
		logger.InfoWithFields("exporting spans", logging.Field("endpoint", cfg.Load.OTLPEndpoint))
	}

	logger.InfoWithFields("starting load run",
		logging.Field("run_id", runner.RunID()),
		logging.Field("domain", cfg.Load.Domain),
		logging.Field("vus", cfg.Load.VUs),
		logging.Field("duration", cfg.Load.Duration.String()),
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		summary *loadtest.Summary
		runErr  error
	)
	g, gctx := errgroup.WithContext(runCtx)
	if registry != nil {
		g.Go(func() error {
			return loadtest.ServeMetrics(gctx, cfg.Load.MetricsAddr, registry)
		})
	}
	g.Go(func() error {
		// the metrics server stops once the run is over
		defer cancelRun()
		summary, runErr = runner.Run(gctx, loadtest.Scenarios(cfg.Load.Domain))
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}

	if summary != nil {
		fmt.Fprintln(cmd.OutOrStdout(), summary.Table())
		if cfg.Load.Report != "" {
			if err := summary.WriteHTML(cfg.Load.Report); err != nil {
				return err
			}
			logger.InfoWithFields("report written", logging.Field("path", cfg.Load.Report))
		}
	}
	if runErr != nil {
		return fmt.Errorf("load run aborted: %w", runErr)
	}
	if failed := summary.ChecksFailed(); failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, summary.Requests())
	}
	return nil
}

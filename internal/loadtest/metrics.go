package loadtest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports live request metrics while a run is in progress.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec // seconds, by scenario
	Checks          *prometheus.CounterVec   // by scenario and result (pass|fail)
	ActiveVUs       prometheus.Gauge
}

// NewMetrics creates and registers the load metrics on reg.
func NewMetrics(reg prometheus.Registerer, runID string) *Metrics {
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "meshprobe_load_request_duration_seconds",
		Help:        "Duration of load test requests",
		Buckets:     prometheus.ExponentialBuckets(0.005, 2, 12),
		ConstLabels: prometheus.Labels{"run_id": runID},
	}, []string{"scenario"})

	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "meshprobe_load_checks_total",
		Help:        "Response checks by result",
		ConstLabels: prometheus.Labels{"run_id": runID},
	}, []string{"scenario", "result"})

	activeVUs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "meshprobe_load_active_vus",
		Help:        "Number of running virtual users",
		ConstLabels: prometheus.Labels{"run_id": runID},
	})

	reg.MustRegister(requestDuration, checks, activeVUs)

	return &Metrics{
		RequestDuration: requestDuration,
		Checks:          checks,
		ActiveVUs:       activeVUs,
	}
}

func (m *Metrics) observe(scenario string, d time.Duration, passed bool) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(scenario).Observe(d.Seconds())
	result := "pass"
	if !passed {
		result = "fail"
	}
	m.Checks.WithLabelValues(scenario, result).Inc()
}

func (m *Metrics) vuStarted() {
	if m != nil {
		m.ActiveVUs.Inc()
	}
}

func (m *Metrics) vuStopped() {
	if m != nil {
		m.ActiveVUs.Dec()
	}
}

// ServeMetrics exposes gatherer on addr under /metrics until ctx is done.
func ServeMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Package tracing exports OpenTelemetry spans of load runs over OTLP gRPC.
package tracing

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/moolen/meshprobe/internal/config"
	"github.com/moolen/meshprobe/internal/logging"
)

const serviceName = "meshprobe"

// Provider wraps the OpenTelemetry TracerProvider. A provider without an
// endpoint hands out no-op tracers.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	logger         *logging.Logger
	enabled        bool
}

// Config holds tracing configuration
type Config struct {
	Endpoint    string // OTLP gRPC endpoint, e.g. "otel-collector:4317"; empty disables tracing
	TLSCAPath   string // CA certificate for TLS verification (optional)
	TLSInsecure bool   // TLS without certificate verification
	Version     string
}

// ConfigFromLoad maps the OTLP settings of the load section.
func ConfigFromLoad(cfg config.LoadConfig, version string) Config {
	return Config{
		Endpoint:    cfg.OTLPEndpoint,
		TLSCAPath:   cfg.OTLPCAPath,
		TLSInsecure: cfg.OTLPInsecure,
		Version:     version,
	}
}

// NewProvider creates the tracer provider and installs it, together with the
// W3C trace context propagator, as the global default.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	logger := logging.GetLogger("tracing")

	if cfg.Endpoint == "" {
		logger.Debug("Tracing disabled")
		return &Provider{logger: logger}, nil
	}

	dialOption, err := transportCredentials(cfg, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	otlpOptions := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(dialOption),
	}
	if cfg.TLSCAPath == "" && !cfg.TLSInsecure {
		otlpOptions = append(otlpOptions, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, otlpOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("Tracing initialized with endpoint: %s", cfg.Endpoint)

	return &Provider{
		tracerProvider: tracerProvider,
		logger:         logger,
		enabled:        true,
	}, nil
}

func transportCredentials(cfg Config, logger *logging.Logger) (grpc.DialOption, error) {
	if cfg.TLSCAPath == "" && !cfg.TLSInsecure {
		logger.Debug("TLS disabled for tracing")
		return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.TLSInsecure {
		tlsConfig.InsecureSkipVerify = true
		logger.Info("TLS enabled for tracing with certificate verification disabled")
	} else {
		caCert, err := os.ReadFile(cfg.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to append CA certificate to pool")
		}
		tlsConfig.RootCAs = certPool
		logger.Info("TLS enabled for tracing with CA from: %s", cfg.TLSCAPath)
	}
	return grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)), nil
}

// TracerProvider returns the installed provider, or a no-op one when disabled.
func (p *Provider) TracerProvider() trace.TracerProvider {
	if !p.enabled {
		return noop.NewTracerProvider()
	}
	return p.tracerProvider
}

// Shutdown flushes remaining spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		p.logger.Error("Error shutting down tracer provider: %v", err)
		return err
	}
	return nil
}

// IsEnabled returns whether spans are exported
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

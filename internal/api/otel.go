// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	promcli "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	otelresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.22.0"

	"github.com/platform-engineering-labs/skyfed"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// NewResource describes this agent to every telemetry backend.
func NewResource(ctx context.Context, otelConfig *model.OTelConfig, agentID string) (*otelresource.Resource, error) {
	return otelresource.New(ctx,
		otelresource.WithAttributes(
			semconv.ServiceNameKey.String(otelConfig.ServiceName),
			semconv.ServiceInstanceIDKey.String(agentID),
			semconv.ServiceVersionKey.String(skyfed.Version),
		),
	)
}

// SetupGlobalTracerProvider initializes the global TracerProvider for OTLP export.
// This must be called BEFORE any db connections are created, as otelsql requires the
// TracerProvider at driver registration time.
//
// Returns a shutdown function that should be called on app exit.
func SetupGlobalTracerProvider(ctx context.Context, otelConfig *model.OTelConfig, res *otelresource.Resource) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if otelConfig == nil || !otelConfig.Enabled {
		return noop
	}

	otlpConfig := otelConfig.OTLP

	var exporter sdktrace.SpanExporter
	var err error
	switch otlpConfig.Protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(otlpConfig.Endpoint),
		}
		if otlpConfig.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(otlpConfig.Endpoint),
		}
		if otlpConfig.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		slog.Error("unknown OTLP protocol for tracing", "protocol", otlpConfig.Protocol)
		return noop
	}

	if err != nil {
		slog.Error("failed to create OTLP trace exporter", "error", err)
		return noop
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	slog.Info("OTel tracing enabled", "endpoint", otlpConfig.Endpoint, "protocol", otlpConfig.Protocol)

	return tracerProvider.Shutdown
}

// Metrics owns the global MeterProvider and its readers.
type Metrics struct {
	provider *metric.MeterProvider
	handler  http.Handler
}

// SetupMetrics installs the global MeterProvider. The Prometheus reader backs
// the /metrics route, the OTLP reader pushes when OTel is enabled. Go runtime
// and host metrics are recorded on the same provider.
func SetupMetrics(ctx context.Context, otelConfig *model.OTelConfig, res *otelresource.Resource) (*Metrics, error) {
	opts := []metric.Option{metric.WithResource(res)}
	m := &Metrics{}

	if otelConfig.Prometheus.Enabled {
		registry := promcli.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, metric.WithReader(exporter))
		m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	if otelConfig.Enabled {
		exporter, err := otlpMetricExporter(ctx, &otelConfig.OTLP)
		if err != nil {
			return nil, err
		}
		opts = append(opts, metric.WithReader(metric.NewPeriodicReader(exporter)))
	}

	m.provider = metric.NewMeterProvider(opts...)

	// Set as global meter provider so libraries like otelsql and otelpgx can use it
	otel.SetMeterProvider(m.provider)

	if err := runtime.Start(runtime.WithMeterProvider(m.provider)); err != nil {
		slog.Warn("failed to start runtime metrics", "error", err)
	}
	if err := host.Start(host.WithMeterProvider(m.provider)); err != nil {
		slog.Warn("failed to start host metrics", "error", err)
	}

	return m, nil
}

func otlpMetricExporter(ctx context.Context, cfg *model.OTLPConfig) (metric.Exporter, error) {
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown OTLP protocol for metrics %q", cfg.Protocol)
	}
}

// Handler serves the Prometheus scrape endpoint, nil when Prometheus is off.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return nil
	}
	return m.handler
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	if err := m.provider.Shutdown(ctx); err != nil && !errors.Is(err, metric.ErrReaderShutdown) {
		return fmt.Errorf("failed to shut down MeterProvider: %w", err)
	}
	return nil
}

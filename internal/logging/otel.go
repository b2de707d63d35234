// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// NewOTelHandler exports log records over OTLP. The returned provider must be
// shut down to flush the last batch.
func NewOTelHandler(ctx context.Context, cfg *model.OTelConfig, res *resource.Resource) (slog.Handler, *otellog.LoggerProvider, error) {
	var exporter otellog.Exporter
	switch cfg.OTLP.Protocol {
	case "grpc":
		opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		e, err := otlploggrpc.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("could not set up OTLP gRPC log exporter: %w", err)
		}
		exporter = e
	case "http":
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		e, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("could not set up OTLP HTTP log exporter: %w", err)
		}
		exporter = e
	default:
		return nil, nil, fmt.Errorf("unknown OTLP protocol %q", cfg.OTLP.Protocol)
	}

	provider := otellog.NewLoggerProvider(
		otellog.WithResource(res),
		otellog.WithProcessor(otellog.NewBatchProcessor(exporter)),
	)
	return otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(provider)), provider, nil
}

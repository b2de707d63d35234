// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

const (
	localityLocal  = "local"
	localityRemote = "remote"
)

var tracer = otel.Tracer("skyfed/cloudconnector")

type telemetry struct {
	operationCounter  otelmetric.Int64Counter
	operationDuration otelmetric.Float64Histogram
}

func newTelemetry(meter otelmetric.Meter) *telemetry {
	t, err := setupConnectorMetrics(meter)
	if err != nil {
		slog.Warn("Connector metrics disabled", "error", err)
	}
	return t
}

func setupConnectorMetrics(meter otelmetric.Meter) (*telemetry, error) {
	if meter == nil {
		meter = otel.Meter("skyfed/cloudconnector")
	}

	t := &telemetry{}
	var err error
	t.operationCounter, err = meter.Int64Counter(
		"skyfed.connector.operation.total",
		otelmetric.WithDescription("Total connector operations"),
	)
	if err != nil {
		return t, fmt.Errorf("failed to create operation counter: %w", err)
	}

	t.operationDuration, err = meter.Float64Histogram(
		"skyfed.connector.operation.duration_ms",
		otelmetric.WithDescription("Duration of connector operations"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return t, fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	return t, nil
}

// span tracks one connector operation from start to finish.
type span struct {
	t         *telemetry
	inner     trace.Span
	start     time.Time
	operation model.Operation
	resource  model.ResourceType
	locality  string
	cloudName string
}

func (t *telemetry) start(ctx context.Context, name string, op model.Operation, rt model.ResourceType, locality, cloudName string) (context.Context, *span) {
	ctx, inner := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("resource_type", string(rt)),
		attribute.String("locality", locality),
		attribute.String("cloud", cloudName),
	))
	return ctx, &span{t: t, inner: inner, start: time.Now(), operation: op, resource: rt, locality: locality, cloudName: cloudName}
}

func (s *span) end(ctx context.Context, err error) {
	defer s.inner.End()

	outcome := "success"
	if err != nil {
		outcome = model.KindOf(err)
		s.inner.RecordError(err)
		s.inner.SetStatus(codes.Error, err.Error())
	}

	if s.t == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", string(s.operation)),
		attribute.String("resource_type", string(s.resource)),
		attribute.String("locality", s.locality),
		attribute.String("outcome", outcome),
	)
	if s.t.operationCounter != nil {
		s.t.operationCounter.Add(ctx, 1, attrs)
	}
	if s.t.operationDuration != nil {
		s.t.operationDuration.Record(ctx, float64(time.Since(s.start).Milliseconds()), attrs)
	}
}

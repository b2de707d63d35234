// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plugin

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricRegistry lets plugins record their own metrics. Every data point is
// tagged with the cloud the plugin serves.
type MetricRegistry interface {
	Counter(name string, value int64, attrs ...attribute.KeyValue)
	UpDownCounter(name string, value int64, attrs ...attribute.KeyValue)
	Gauge(name string, value float64, attrs ...attribute.KeyValue)
	Histogram(name string, value float64, attrs ...attribute.KeyValue)
}

type metricsKey struct{}

// MetricsFromContext never returns nil.
func MetricsFromContext(ctx context.Context) MetricRegistry {
	if m, ok := ctx.Value(metricsKey{}).(MetricRegistry); ok {
		return m
	}
	return noopMetrics{}
}

func WithMetrics(ctx context.Context, m MetricRegistry) context.Context {
	return context.WithValue(ctx, metricsKey{}, m)
}

type noopMetrics struct{}

func (noopMetrics) Counter(name string, value int64, attrs ...attribute.KeyValue)       {}
func (noopMetrics) UpDownCounter(name string, value int64, attrs ...attribute.KeyValue) {}
func (noopMetrics) Gauge(name string, value float64, attrs ...attribute.KeyValue)       {}
func (noopMetrics) Histogram(name string, value float64, attrs ...attribute.KeyValue)   {}

// meterRegistry creates OTel instruments on first use and caches them by name.
type meterRegistry struct {
	meter metric.Meter
	base  []attribute.KeyValue

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	upDowns    map[string]metric.Int64UpDownCounter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
}

// NewMeterRegistry backs a MetricRegistry with meter. Instrument names are
// prefixed with "skyfed.plugin.".
func NewMeterRegistry(meter metric.Meter, cloudName string) MetricRegistry {
	return &meterRegistry{
		meter:      meter,
		base:       []attribute.KeyValue{attribute.String("cloud", cloudName)},
		counters:   make(map[string]metric.Int64Counter),
		upDowns:    make(map[string]metric.Int64UpDownCounter),
		gauges:     make(map[string]metric.Float64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (m *meterRegistry) options(attrs []attribute.KeyValue) metric.MeasurementOption {
	all := make([]attribute.KeyValue, 0, len(m.base)+len(attrs))
	all = append(all, m.base...)
	all = append(all, attrs...)
	return metric.WithAttributes(all...)
}

func (m *meterRegistry) Counter(name string, value int64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	c, ok := m.counters[name]
	if !ok {
		var err error
		if c, err = m.meter.Int64Counter("skyfed.plugin." + name); err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = c
	}
	m.mu.Unlock()
	c.Add(context.Background(), value, m.options(attrs))
}

func (m *meterRegistry) UpDownCounter(name string, value int64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	c, ok := m.upDowns[name]
	if !ok {
		var err error
		if c, err = m.meter.Int64UpDownCounter("skyfed.plugin." + name); err != nil {
			m.mu.Unlock()
			return
		}
		m.upDowns[name] = c
	}
	m.mu.Unlock()
	c.Add(context.Background(), value, m.options(attrs))
}

func (m *meterRegistry) Gauge(name string, value float64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	g, ok := m.gauges[name]
	if !ok {
		var err error
		if g, err = m.meter.Float64Gauge("skyfed.plugin." + name); err != nil {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = g
	}
	m.mu.Unlock()
	g.Record(context.Background(), value, m.options(attrs))
}

func (m *meterRegistry) Histogram(name string, value float64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	h, ok := m.histograms[name]
	if !ok {
		var err error
		if h, err = m.meter.Float64Histogram("skyfed.plugin." + name); err != nil {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = h
	}
	m.mu.Unlock()
	h.Record(context.Background(), value, m.options(attrs))
}

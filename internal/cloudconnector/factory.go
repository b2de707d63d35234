// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

// PluginInstantiator builds the plugins of a configured cloud.
// *plugin.Registry implements it.
type PluginInstantiator interface {
	Instantiate(cfg model.CloudConfig) (*plugin.Set, error)
}

// Factory resolves a provider and cloud into the connector that serves them.
// Local connectors are built once per cloud name and kept; remote connectors
// are cheap and built on every call.
type Factory struct {
	localID      string
	defaultCloud string
	clouds       map[string]model.CloudConfig
	instantiator PluginInstantiator
	auditor      *Auditor
	sender       intercomponent.PacketSender
	meter        metric.Meter
	telemetry    *telemetry

	mu    sync.Mutex
	local map[string]*LocalCloudConnector
}

type FactoryOption func(*Factory)

// WithMeter makes the connectors, and the plugins they call, record metrics on
// meter instead of the global meter provider.
func WithMeter(meter metric.Meter) FactoryOption {
	return func(f *Factory) { f.meter = meter }
}

func NewFactory(cfg *model.Config, instantiator PluginInstantiator, auditor *Auditor, sender intercomponent.PacketSender, opts ...FactoryOption) *Factory {
	f := &Factory{
		localID:      cfg.Provider.ID,
		defaultCloud: cfg.Provider.DefaultCloud,
		clouds:       make(map[string]model.CloudConfig, len(cfg.Clouds)),
		instantiator: instantiator,
		auditor:      auditor,
		sender:       sender,
		local:        make(map[string]*LocalCloudConnector),
	}
	for _, c := range cfg.Clouds {
		f.clouds[c.Name] = c
	}
	for _, opt := range opts {
		opt(f)
	}
	f.telemetry = newTelemetry(f.meter)
	return f
}

func (f *Factory) LocalID() string {
	return f.localID
}

func (f *Factory) Auditor() *Auditor {
	return f.auditor
}

// GetConnector returns a LocalCloudConnector when providerID is this provider
// and a RemoteCloudConnector otherwise. An empty cloud name stands for the
// default cloud of this provider.
func (f *Factory) GetConnector(providerID, cloudName string) (CloudConnector, error) {
	if providerID != f.localID {
		c := NewRemoteCloudConnector(providerID, cloudName, f.sender)
		c.telemetry = f.telemetry
		return c, nil
	}
	return f.localConnector(cloudName)
}

func (f *Factory) localConnector(cloudName string) (*LocalCloudConnector, error) {
	if cloudName == "" {
		cloudName = f.defaultCloud
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.local[cloudName]; ok {
		return c, nil
	}

	cfg, ok := f.clouds[cloudName]
	if !ok {
		return nil, model.NewInvalidParameterError("provider %s has no cloud %q", f.localID, cloudName)
	}
	plugins, err := f.instantiator.Instantiate(cfg)
	if err != nil {
		slog.Error("Failed to instantiate cloud plugins", "cloud", cloudName, "error", err)
		return nil, model.WrapError(model.KindUnexpected, fmt.Errorf("cloud %s: %w", cloudName, err))
	}

	c := NewLocalCloudConnector(cloudName, plugins, f.auditor, f.meter)
	c.telemetry = f.telemetry
	f.local[cloudName] = c
	slog.Debug("Created local cloud connector", "cloud", cloudName)
	return c, nil
}

// CloudNames lists the clouds this provider serves, default first.
func (f *Factory) CloudNames() []string {
	names := make([]string, 0, len(f.clouds))
	for name := range f.clouds {
		if name != f.defaultCloud {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if _, ok := f.clouds[f.defaultCloud]; ok {
		names = slices.Insert(names, 0, f.defaultCloud)
	}
	return names
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plugin

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Driver builds the plugins of one kind of cloud. The mapper is configured
// separately so any driver can be paired with any identity mapping.
type Driver interface {
	Plugin
	NewSet(cloudName string, params map[string]string) (*Set, error)
}

type MapperFactory func(params map[string]string) (MapperPlugin, error)

type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	mappers map[string]MapperFactory
}

func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
		mappers: make(map[string]MapperFactory),
	}
}

func (r *Registry) RegisterDriver(d Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[d.Name()]; exists {
		return fmt.Errorf("driver %s already registered", d.Name())
	}
	r.drivers[d.Name()] = d
	slog.Debug("Registered cloud driver", "driver", d.Name(), "version", d.Version().String())
	return nil
}

func (r *Registry) RegisterMapper(name string, f MapperFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappers[name]; exists {
		return fmt.Errorf("mapper %s already registered", name)
	}
	r.mappers[name] = f
	return nil
}

func (r *Registry) Driver(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown cloud driver %q", name)
	}
	return d, nil
}

// Drivers lists the registered drivers by name.
func (r *Registry) Drivers() []Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Driver) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return out
}

// Instantiate builds and validates the plugin set of a configured cloud.
func (r *Registry) Instantiate(cfg model.CloudConfig) (*Set, error) {
	d, err := r.Driver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	set, err := d.NewSet(cfg.Name, cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to build plugins for cloud %s: %w", cfg.Name, err)
	}

	if cfg.Mapper.Type != "" {
		r.mu.RLock()
		f, ok := r.mappers[cfg.Mapper.Type]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("unknown identity mapper %q for cloud %s", cfg.Mapper.Type, cfg.Name)
		}
		mapper, err := f(cfg.Mapper.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to build identity mapper for cloud %s: %w", cfg.Name, err)
		}
		set.Mapper = mapper
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete plugin set for cloud %s: %w", cfg.Name, err)
	}

	slog.Info("Instantiated cloud plugins", "cloud", cfg.Name, "driver", d.Name(), "version", d.Version().String())
	return set, nil
}

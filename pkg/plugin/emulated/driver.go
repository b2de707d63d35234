// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package emulated is an in-memory cloud. It implements every plugin contract
// and is what the agent runs against when no vendor cloud is configured.
package emulated

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/masterminds/semver"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

const DriverName = "emulated"

var driverVersion = semver.MustParse("1.0.0")

var defaultFlavors = []model.HardwareRequirements{
	{Name: "tiny", FlavorID: "emu.tiny", CPU: 1, Memory: 512, Disk: 5},
	{Name: "small", FlavorID: "emu.small", CPU: 1, Memory: 2048, Disk: 20},
	{Name: "medium", FlavorID: "emu.medium", CPU: 2, Memory: 4096, Disk: 40},
	{Name: "large", FlavorID: "emu.large", CPU: 4, Memory: 8192, Disk: 80},
	{Name: "xlarge", FlavorID: "emu.xlarge", CPU: 8, Memory: 16384, Disk: 160},
}

var defaultImages = []model.ImageInstance{
	{ID: "img-ubuntu-24.04", Name: "ubuntu-24.04", Status: "active", Size: 2 << 30, MinDisk: 5, MinRAM: 512},
	{ID: "img-debian-12", Name: "debian-12", Status: "active", Size: 1 << 30, MinDisk: 4, MinRAM: 512},
}

var defaultLimits = model.ResourceAllocation{
	Instances: 20,
	VCPU:      40,
	RAM:       81920,
	Disk:      2000,
	Networks:  10,
	PublicIPs: 10,
	Volumes:   40,
}

type options struct {
	flavors      []model.HardwareRequirements
	images       []model.ImageInstance
	limits       model.ResourceAllocation
	settleReads  int
	failOnCreate bool
}

// Driver keeps one Cloud per cloud name so every Set built for the same name
// sees the same resources.
type Driver struct {
	mu     sync.Mutex
	clouds map[string]*Cloud
}

func NewDriver() *Driver {
	return &Driver{clouds: make(map[string]*Cloud)}
}

func (d *Driver) Name() string             { return DriverName }
func (d *Driver) Version() *semver.Version { return driverVersion }

// Cloud returns the state of a cloud built by this driver.
func (d *Driver) Cloud(name string) (*Cloud, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clouds[name]
	return c, ok
}

// NewSet understands the following params:
//
//	flavors       name:cpu:memory:disk[,...]
//	images        id:name[,...]
//	quota.<dim>   instances, vcpu, ram, disk, networks, publicIps, volumes
//	settleReads   reads before a new resource leaves its provisioning state
//	failOnCreate  "true" makes every new resource report an error state
func (d *Driver) NewSet(cloudName string, params map[string]string) (*plugin.Set, error) {
	opts, err := parseOptions(params)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	cloud, ok := d.clouds[cloudName]
	if !ok {
		cloud = newCloud(cloudName, opts)
		d.clouds[cloudName] = cloud
	}
	d.mu.Unlock()

	return NewSet(cloud), nil
}

// NewSet builds the plugins of cloud, without an identity mapper.
func NewSet(cloud *Cloud) *plugin.Set {
	return &plugin.Set{
		Compute:      &ComputePlugin{cloud: cloud, classifier: classifier{model.ResourceTypeCompute}},
		Network:      &NetworkPlugin{cloud: cloud, classifier: classifier{model.ResourceTypeNetwork}},
		Volume:       &VolumePlugin{cloud: cloud, classifier: classifier{model.ResourceTypeVolume}},
		Attachment:   &AttachmentPlugin{cloud: cloud, classifier: classifier{model.ResourceTypeAttachment}},
		PublicIP:     &PublicIPPlugin{cloud: cloud, classifier: classifier{model.ResourceTypePublicIP}},
		Image:        &ImagePlugin{cloud: cloud},
		Quota:        &QuotaPlugin{cloud: cloud},
		SecurityRule: &SecurityRulePlugin{cloud: cloud},
	}
}

func parseOptions(params map[string]string) (options, error) {
	opts := options{
		flavors: defaultFlavors,
		images:  defaultImages,
		limits:  defaultLimits,
	}

	if v, ok := params["flavors"]; ok {
		flavors, err := parseFlavors(v)
		if err != nil {
			return opts, err
		}
		opts.flavors = flavors
	}

	if v, ok := params["images"]; ok {
		images, err := parseImages(v)
		if err != nil {
			return opts, err
		}
		opts.images = images
	}

	limits := map[string]*int{
		"quota.instances": &opts.limits.Instances,
		"quota.vcpu":      &opts.limits.VCPU,
		"quota.ram":       &opts.limits.RAM,
		"quota.disk":      &opts.limits.Disk,
		"quota.networks":  &opts.limits.Networks,
		"quota.publicIps": &opts.limits.PublicIPs,
		"quota.volumes":   &opts.limits.Volumes,
		"settleReads":     &opts.settleReads,
	}
	for key, dst := range limits {
		v, ok := params[key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid value %q for %s", v, key)
		}
		*dst = n
	}

	if v, ok := params["failOnCreate"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid value %q for failOnCreate", v)
		}
		opts.failOnCreate = b
	}

	return opts, nil
}

func parseFlavors(s string) ([]model.HardwareRequirements, error) {
	var flavors []model.HardwareRequirements
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid flavor %q, expected name:cpu:memory:disk", entry)
		}
		var sizes [3]int
		for i, p := range parts[1:] {
			n, err := strconv.Atoi(p)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid flavor %q: %q is not a positive size", entry, p)
			}
			sizes[i] = n
		}
		flavors = append(flavors, model.HardwareRequirements{
			Name:     parts[0],
			FlavorID: "emu." + parts[0],
			CPU:      sizes[0],
			Memory:   sizes[1],
			Disk:     sizes[2],
		})
	}
	return flavors, nil
}

func parseImages(s string) ([]model.ImageInstance, error) {
	var images []model.ImageInstance
	for _, entry := range strings.Split(s, ",") {
		id, name, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || id == "" || name == "" {
			return nil, fmt.Errorf("invalid image %q, expected id:name", entry)
		}
		images = append(images, model.ImageInstance{ID: id, Name: name, Status: "active"})
	}
	return images, nil
}

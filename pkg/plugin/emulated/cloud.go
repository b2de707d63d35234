// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emulated

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

type resource struct {
	id    string
	kind  model.ResourceType
	state string
	// reads left before a provisioning resource settles
	pendingReads int

	name       string
	flavor     model.HardwareRequirements
	imageID    string
	cidr       string
	gateway    string
	size       int
	computeID  string
	volumeID   string
	device     string
	ip         string
	allocation model.ResourceAllocation
}

// Cloud is the in-memory state shared by the plugins of one emulated cloud.
type Cloud struct {
	name string

	mu        sync.RWMutex
	resources map[string]*resource
	rules     map[string]map[string]model.SecurityRuleInstance
	ruleOwner map[string]string
	ipSeq     int

	images       map[string]model.ImageInstance
	flavors      *model.FlavorSet
	limits       model.ResourceAllocation
	settleReads  int
	failOnCreate bool
}

func newCloud(name string, opts options) *Cloud {
	images := make(map[string]model.ImageInstance, len(opts.images))
	for _, img := range opts.images {
		img.CloudName = name
		images[img.ID] = img
	}
	return &Cloud{
		name:         name,
		resources:    make(map[string]*resource),
		rules:        make(map[string]map[string]model.SecurityRuleInstance),
		ruleOwner:    make(map[string]string),
		images:       images,
		flavors:      model.NewFlavorSet(opts.flavors...),
		limits:       opts.limits,
		settleReads:  opts.settleReads,
		failOnCreate: opts.failOnCreate,
	}
}

func (c *Cloud) Name() string {
	return c.name
}

func (c *Cloud) used() model.ResourceAllocation {
	var used model.ResourceAllocation
	for _, r := range c.resources {
		a := r.allocation
		used.Instances += a.Instances
		used.VCPU += a.VCPU
		used.RAM += a.RAM
		used.Disk += a.Disk
		used.Networks += a.Networks
		used.PublicIPs += a.PublicIPs
		used.Volumes += a.Volumes
	}
	return used
}

func (c *Cloud) create(r *resource) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	available := c.limits.Sub(c.used())
	if !available.Fits(r.allocation) {
		return "", model.NewError(model.KindQuotaExceeded, "%s request exceeds the available quota of cloud %s", r.kind, c.name)
	}

	r.id = uuid.NewString()
	switch {
	case c.failOnCreate:
		r.state = StateError
	case c.settleReads > 0:
		r.state = provisioningState(r.kind)
		r.pendingReads = c.settleReads
	default:
		r.state = readyState(r.kind)
	}
	c.resources[r.id] = r
	return r.id, nil
}

// read returns a copy of the resource, advancing its provisioning.
func (c *Cloud) read(kind model.ResourceType, id string) (resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.resources[id]
	if !ok || r.kind != kind {
		return resource{}, model.NewInstanceNotFoundError("%s %s not found in cloud %s", kind, id, c.name)
	}
	out := *r
	if r.pendingReads > 0 {
		r.pendingReads--
		if r.pendingReads == 0 {
			r.state = readyState(r.kind)
		}
	}
	return out, nil
}

func (c *Cloud) remove(kind model.ResourceType, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.resources[id]
	if !ok || r.kind != kind {
		return model.NewInstanceNotFoundError("%s %s not found in cloud %s", kind, id, c.name)
	}
	delete(c.resources, id)
	for ruleID := range c.rules[id] {
		delete(c.ruleOwner, ruleID)
	}
	delete(c.rules, id)
	return nil
}

func (c *Cloud) exists(kind model.ResourceType, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.resources[id]
	return ok && r.kind == kind
}

// SetState forces the cloud state of a resource, for driving lifecycles from
// tests and demos.
func (c *Cloud) SetState(id, state string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.resources[id]
	if !ok {
		return fmt.Errorf("no resource %s in cloud %s", id, c.name)
	}
	r.state = state
	r.pendingReads = 0
	return nil
}

// Forget drops a resource without going through a plugin, the way an out of
// band deletion would.
func (c *Cloud) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.resources, id)
}

func (c *Cloud) nextIP() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ipSeq++
	return fmt.Sprintf("203.0.113.%d", c.ipSeq%254+1)
}

func (c *Cloud) addRule(instanceID string, rule model.SecurityRule) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.resources[instanceID]; !ok {
		return "", model.NewInstanceNotFoundError("no instance %s to attach the rule to", instanceID)
	}
	id := uuid.NewString()
	if c.rules[instanceID] == nil {
		c.rules[instanceID] = make(map[string]model.SecurityRuleInstance)
	}
	c.rules[instanceID][id] = model.SecurityRuleInstance{ID: id, SecurityRule: rule}
	c.ruleOwner[id] = instanceID
	return id, nil
}

func (c *Cloud) listRules(instanceID string) []model.SecurityRuleInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(c.rules[instanceID]))
	out := make([]model.SecurityRuleInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.rules[instanceID][id])
	}
	return out
}

func (c *Cloud) removeRule(ruleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.ruleOwner[ruleID]
	if !ok {
		return model.NewInstanceNotFoundError("security rule %s not found", ruleID)
	}
	delete(c.rules[owner], ruleID)
	delete(c.ruleOwner, ruleID)
	return nil
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emulated

import (
	"cmp"
	"context"
	"slices"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

type ImagePlugin struct {
	cloud *Cloud
}

func (p *ImagePlugin) GetAllImages(ctx context.Context, user *model.CloudUser) ([]model.ImageSummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	out := make([]model.ImageSummary, 0, len(p.cloud.images))
	for _, img := range p.cloud.images {
		out = append(out, model.ImageSummary{ID: img.ID, Name: img.Name})
	}
	slices.SortFunc(out, func(a, b model.ImageSummary) int {
		return cmp.Compare(a.Name, b.Name)
	})
	plugin.LoggerFromContext(ctx).Debug("Listed images", "count", len(out))
	return out, nil
}

func (p *ImagePlugin) GetImage(ctx context.Context, imageID string, user *model.CloudUser) (*model.ImageInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	img, ok := p.cloud.images[imageID]
	if !ok {
		return nil, model.NewInstanceNotFoundError("image %s not found in cloud %s", imageID, p.cloud.name)
	}
	return &img, nil
}

type QuotaPlugin struct {
	cloud *Cloud
}

func (p *QuotaPlugin) GetUserQuota(ctx context.Context, user *model.CloudUser) (*model.Quota, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	p.cloud.mu.RLock()
	used := p.cloud.used()
	p.cloud.mu.RUnlock()

	quota := model.NewQuota(p.cloud.limits, used)
	plugin.MetricsFromContext(ctx).Gauge("quota.vcpu.available", float64(quota.Available.VCPU))
	return quota, nil
}

// SecurityRulePlugin keeps rules per instance. Only networks and public ips
// accept rules.
type SecurityRulePlugin struct {
	cloud *Cloud
}

func ruleTarget(order model.Order) (string, error) {
	switch order.(type) {
	case *model.NetworkOrder, *model.PublicIPOrder:
	default:
		return "", model.NewInvalidParameterError("security rules are not supported for %s orders", order.Kind())
	}
	return requireInstanceID(order)
}

func (p *SecurityRulePlugin) GetSecurityRules(ctx context.Context, order model.Order, user *model.CloudUser) ([]model.SecurityRuleInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	instanceID, err := ruleTarget(order)
	if err != nil {
		return nil, err
	}
	return p.cloud.listRules(instanceID), nil
}

func (p *SecurityRulePlugin) RequestSecurityRule(ctx context.Context, rule model.SecurityRule, order model.Order, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	if err := rule.Validate(); err != nil {
		return "", err
	}
	instanceID, err := ruleTarget(order)
	if err != nil {
		return "", err
	}
	id, err := p.cloud.addRule(instanceID, rule)
	if err != nil {
		return "", err
	}
	plugin.LoggerFromContext(ctx).Info("Added security rule", "ruleId", id, "instanceId", instanceID, "rule", rule.String())
	return id, nil
}

func (p *SecurityRulePlugin) DeleteSecurityRule(ctx context.Context, ruleID string, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.removeRule(ruleID); err != nil {
		return err
	}
	plugin.LoggerFromContext(ctx).Info("Removed security rule", "ruleId", ruleID)
	return nil
}

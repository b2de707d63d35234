// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

// LocalCloudConnector serves one cloud of this provider through its plugins.
// Every operation maps the identity, calls the plugin and writes one audit
// record, in that order, whatever the outcome.
type LocalCloudConnector struct {
	cloudName string
	plugins   *plugin.Set
	auditor   *Auditor
	telemetry *telemetry
	metrics   plugin.MetricRegistry
}

// NewLocalCloudConnector records metrics on meter, or on the global meter
// provider when meter is nil.
func NewLocalCloudConnector(cloudName string, plugins *plugin.Set, auditor *Auditor, meter metric.Meter) *LocalCloudConnector {
	c := &LocalCloudConnector{
		cloudName: cloudName,
		plugins:   plugins,
		auditor:   auditor,
		telemetry: newTelemetry(meter),
	}
	if meter == nil {
		meter = otel.Meter("skyfed/plugin")
	}
	c.metrics = plugin.NewMeterRegistry(meter, cloudName)
	return c
}

func (c *LocalCloudConnector) CloudName() string {
	return c.cloudName
}

// call is the audit envelope shared by every operation. describe renders a
// successful result as the audit outcome; a nil return means no outcome.
func call[T any](
	ctx context.Context,
	c *LocalCloudConnector,
	op model.Operation,
	rt model.ResourceType,
	user *model.SystemUser,
	describe func(T) *string,
	do func(ctx context.Context, cloudUser *model.CloudUser) (T, error),
) (result T, err error) {
	ctx, s := c.telemetry.start(ctx, "Local"+string(op), op, rt, localityLocal, c.cloudName)
	defer func() {
		var response *string
		if err != nil {
			tag := model.KindOf(err)
			response = &tag
			attrs := []any{"cloud", c.cloudName, "operation", op, "resourceType", rt, "user", describeUser(user), "error", err}
			if errors.Is(err, model.ErrInstanceNotFound) {
				slog.Info("Cloud resource not found", attrs...)
			} else {
				slog.Error("Local cloud operation failed", attrs...)
			}
		} else {
			response = describe(result)
		}
		c.auditor.Audit(ctx, op, rt, user, response)
		s.end(ctx, err)
	}()

	cloudUser, err := c.plugins.Mapper.Map(ctx, user)
	if err != nil {
		return result, err
	}

	ctx = plugin.WithLogger(ctx, plugin.CloudLogger(c.cloudName, rt))
	ctx = plugin.WithMetrics(ctx, c.metrics)
	return do(ctx, cloudUser)
}

func describeUser(user *model.SystemUser) string {
	if user == nil {
		return "<none>"
	}
	return user.String()
}

func text(s string) *string { return &s }

func outcome[T any, P interface {
	*T
	fmt.Stringer
}](v P) *string {
	if v == nil {
		return nil
	}
	return text(v.String())
}

func imagesOutcome(images model.ImageList) *string {
	if images == nil {
		return nil
	}
	return text(images.String())
}

func rulesOutcome(rules model.SecurityRuleList) *string {
	if rules == nil {
		return nil
	}
	return text(rules.String())
}

func nothing(struct{}) *string { return nil }

func instanceOutcome(instance model.OrderInstance) *string {
	if instance == nil {
		return nil
	}
	return text(instance.String())
}

func (c *LocalCloudConnector) RequestInstance(ctx context.Context, order model.Order) (string, error) {
	base := order.Base()
	return call(ctx, c, model.OperationCreate, base.Type, base.SystemUser, text,
		func(ctx context.Context, user *model.CloudUser) (string, error) {
			ops, err := resolve(c.plugins, order)
			if err != nil {
				return "", err
			}
			id, err := ops.request(ctx, user)
			if err != nil {
				return "", err
			}
			if id == "" {
				return "", model.NewUnexpectedError("%s plugin of cloud %s returned no instance id for order %s", base.Type, c.cloudName, base.ID)
			}
			return id, nil
		})
}

// DeleteInstance is a no-op for orders that never got an instance. An instance
// the cloud no longer knows is reported, since a crash between the cloud side
// deletion and the order update leaves exactly that behind.
func (c *LocalCloudConnector) DeleteInstance(ctx context.Context, order model.Order) error {
	base := order.Base()
	_, err := call(ctx, c, model.OperationDelete, base.Type, base.SystemUser, nothing,
		func(ctx context.Context, user *model.CloudUser) (struct{}, error) {
			ops, err := resolve(c.plugins, order)
			if err != nil {
				return struct{}{}, err
			}
			if !base.HasInstance() {
				return struct{}{}, nil
			}
			err = ops.remove(ctx, user)
			if errors.Is(err, model.ErrInstanceNotFound) {
				slog.Warn("Instance already deleted", "orderId", base.ID, "instanceId", base.InstanceID, "cloud", c.cloudName)
			}
			return struct{}{}, err
		})
	return err
}

func (c *LocalCloudConnector) GetInstance(ctx context.Context, order model.Order) (model.OrderInstance, error) {
	base := order.Base()
	return call(ctx, c, model.OperationGet, base.Type, base.SystemUser, instanceOutcome,
		func(ctx context.Context, user *model.CloudUser) (model.OrderInstance, error) {
			ops, err := resolve(c.plugins, order)
			if err != nil {
				return nil, err
			}
			if base.State == model.OrderStateClosed || base.State == model.OrderStateDeactivated {
				return nil, model.NewInstanceNotFoundError("order %s is %s", base.ID, base.State)
			}
			if !base.HasInstance() {
				return model.NewEmptyInstance(order), nil
			}

			instance, err := ops.get(ctx, user)
			if err != nil {
				return nil, err
			}
			if instance == nil {
				return nil, model.NewUnexpectedError("%s plugin of cloud %s returned no instance for order %s", base.Type, c.cloudName, base.ID)
			}

			b := instance.Instance()
			switch {
			case ops.hasFailed(b.CloudState):
				b.SetFailed()
			case ops.isReady(b.CloudState):
				b.SetReady()
			}
			b.ID = base.ID
			b.Provider = base.Provider
			b.CloudName = base.CloudName
			return instance, nil
		})
}

func (c *LocalCloudConnector) GetUserQuota(ctx context.Context, user *model.SystemUser) (*model.Quota, error) {
	return call(ctx, c, model.OperationGetUserQuota, model.ResourceTypeQuota, user, outcome[model.Quota, *model.Quota],
		func(ctx context.Context, cloudUser *model.CloudUser) (*model.Quota, error) {
			return c.plugins.Quota.GetUserQuota(ctx, cloudUser)
		})
}

func (c *LocalCloudConnector) GetAllImages(ctx context.Context, user *model.SystemUser) ([]model.ImageSummary, error) {
	images, err := call(ctx, c, model.OperationGetAll, model.ResourceTypeImage, user, imagesOutcome,
		func(ctx context.Context, cloudUser *model.CloudUser) (model.ImageList, error) {
			return c.plugins.Image.GetAllImages(ctx, cloudUser)
		})
	return images, err
}

func (c *LocalCloudConnector) GetImage(ctx context.Context, imageID string, user *model.SystemUser) (*model.ImageInstance, error) {
	return call(ctx, c, model.OperationGet, model.ResourceTypeImage, user, outcome[model.ImageInstance, *model.ImageInstance],
		func(ctx context.Context, cloudUser *model.CloudUser) (*model.ImageInstance, error) {
			return c.plugins.Image.GetImage(ctx, imageID, cloudUser)
		})
}

func (c *LocalCloudConnector) GetAllSecurityRules(ctx context.Context, order model.Order, user *model.SystemUser) ([]model.SecurityRuleInstance, error) {
	rules, err := call(ctx, c, model.OperationGetAll, model.ResourceTypeSecurityRule, user, rulesOutcome,
		func(ctx context.Context, cloudUser *model.CloudUser) (model.SecurityRuleList, error) {
			return c.plugins.SecurityRule.GetSecurityRules(ctx, order, cloudUser)
		})
	return rules, err
}

func (c *LocalCloudConnector) RequestSecurityRule(ctx context.Context, order model.Order, rule model.SecurityRule, user *model.SystemUser) (string, error) {
	return call(ctx, c, model.OperationCreate, model.ResourceTypeSecurityRule, user, text,
		func(ctx context.Context, cloudUser *model.CloudUser) (string, error) {
			return c.plugins.SecurityRule.RequestSecurityRule(ctx, rule, order, cloudUser)
		})
}

func (c *LocalCloudConnector) DeleteSecurityRule(ctx context.Context, ruleID string, user *model.SystemUser) error {
	_, err := call(ctx, c, model.OperationDelete, model.ResourceTypeSecurityRule, user, nothing,
		func(ctx context.Context, cloudUser *model.CloudUser) (struct{}, error) {
			return struct{}{}, c.plugins.SecurityRule.DeleteSecurityRule(ctx, ruleID, cloudUser)
		})
	return err
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// RemoteCloudConnector forwards every operation to the peer that provides the
// cloud. The peer maps identities and audits on its own side.
type RemoteCloudConnector struct {
	provider  string
	cloudName string
	sender    intercomponent.PacketSender
	telemetry *telemetry
}

func NewRemoteCloudConnector(provider, cloudName string, sender intercomponent.PacketSender) *RemoteCloudConnector {
	return &RemoteCloudConnector{provider: provider, cloudName: cloudName, sender: sender}
}

func (c *RemoteCloudConnector) Provider() string  { return c.provider }
func (c *RemoteCloudConnector) CloudName() string { return c.cloudName }

// translate applies the error policy shared by every remote operation.
func (c *RemoteCloudConnector) translate(op model.Operation, rt model.ResourceType, err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"provider", c.provider, "cloud", c.cloudName, "operation", op, "resourceType", rt, "error", err}
	switch {
	case errors.Is(err, model.ErrInstanceNotFound):
		slog.Info("Remote instance not found", attrs...)
		return err
	case model.IsFederationError(err):
		slog.Error("Remote operation failed", attrs...)
		return err
	default:
		slog.Error("Remote communication failed", attrs...)
		return model.WrapError(model.KindRemoteCommunication, err)
	}
}

func remote[T any](ctx context.Context, c *RemoteCloudConnector, op model.Operation, rt model.ResourceType, send func(ctx context.Context) (T, error)) (T, error) {
	ctx, s := c.telemetry.start(ctx, "Remote"+string(op), op, rt, localityRemote, c.cloudName)
	result, err := send(ctx)
	err = c.translate(op, rt, err)
	s.end(ctx, err)
	return result, err
}

// RequestInstance never returns the peer's instance id. The id only means
// something at the providing side; the requester learns about the instance
// through GetInstance.
func (c *RemoteCloudConnector) RequestInstance(ctx context.Context, order model.Order) (string, error) {
	_, err := remote(ctx, c, model.OperationCreate, order.Base().Type, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, intercomponent.NewRemoteCreateOrderRequest(c.sender, c.provider, c.cloudName, order).Send(ctx)
	})
	return "", err
}

func (c *RemoteCloudConnector) DeleteInstance(ctx context.Context, order model.Order) error {
	_, err := remote(ctx, c, model.OperationDelete, order.Base().Type, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, intercomponent.NewRemoteDeleteOrderRequest(c.sender, c.provider, c.cloudName, order).Send(ctx)
	})
	return err
}

func (c *RemoteCloudConnector) GetInstance(ctx context.Context, order model.Order) (model.OrderInstance, error) {
	return remote(ctx, c, model.OperationGet, order.Base().Type, intercomponent.NewRemoteGetInstanceRequest(c.sender, c.provider, c.cloudName, order).Send)
}

// GetRemoteOrder fetches the providing peer's copy of order, which is
// authoritative when the local copy may be stale.
func (c *RemoteCloudConnector) GetRemoteOrder(ctx context.Context, order model.Order) (model.Order, error) {
	return remote(ctx, c, model.OperationGet, order.Base().Type, intercomponent.NewRemoteGetOrderRequest(c.sender, c.provider, c.cloudName, order).Send)
}

func (c *RemoteCloudConnector) GetUserQuota(ctx context.Context, user *model.SystemUser) (*model.Quota, error) {
	return remote(ctx, c, model.OperationGetUserQuota, model.ResourceTypeQuota, intercomponent.NewRemoteGetUserQuotaRequest(c.sender, c.provider, c.cloudName, user).Send)
}

func (c *RemoteCloudConnector) GetAllImages(ctx context.Context, user *model.SystemUser) ([]model.ImageSummary, error) {
	return remote(ctx, c, model.OperationGetAll, model.ResourceTypeImage, intercomponent.NewRemoteGetAllImagesRequest(c.sender, c.provider, c.cloudName, user).Send)
}

func (c *RemoteCloudConnector) GetImage(ctx context.Context, imageID string, user *model.SystemUser) (*model.ImageInstance, error) {
	return remote(ctx, c, model.OperationGet, model.ResourceTypeImage, intercomponent.NewRemoteGetImageRequest(c.sender, c.provider, c.cloudName, imageID, user).Send)
}

func (c *RemoteCloudConnector) GetAllSecurityRules(ctx context.Context, order model.Order, user *model.SystemUser) ([]model.SecurityRuleInstance, error) {
	return remote(ctx, c, model.OperationGetAll, model.ResourceTypeSecurityRule, intercomponent.NewRemoteGetAllSecurityRulesRequest(c.sender, c.provider, c.cloudName, order, user).Send)
}

func (c *RemoteCloudConnector) RequestSecurityRule(ctx context.Context, order model.Order, rule model.SecurityRule, user *model.SystemUser) (string, error) {
	return remote(ctx, c, model.OperationCreate, model.ResourceTypeSecurityRule, intercomponent.NewRemoteCreateSecurityRuleRequest(c.sender, c.provider, c.cloudName, order, rule, user).Send)
}

func (c *RemoteCloudConnector) DeleteSecurityRule(ctx context.Context, ruleID string, user *model.SystemUser) error {
	_, err := remote(ctx, c, model.OperationDelete, model.ResourceTypeSecurityRule, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, intercomponent.NewRemoteDeleteSecurityRuleRequest(c.sender, c.provider, c.cloudName, ruleID, user).Send(ctx)
	})
	return err
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package intercomponent

import (
	"context"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Each Remote*Request asks the providing peer to run one operation on a cloud
// it owns. Send blocks until the peer replies and reports the peer's own
// failure as the federation error it sent.

type RemoteCreateOrderRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
}

func NewRemoteCreateOrderRequest(sender PacketSender, provider, cloudName string, order model.Order) *RemoteCreateOrderRequest {
	return &RemoteCreateOrderRequest{sender: sender, provider: provider, cloudName: cloudName, order: order}
}

func (r *RemoteCreateOrderRequest) Send(ctx context.Context) error {
	env, err := model.OrderEnvelope(r.order)
	if err != nil {
		return err
	}
	packet, err := NewPacket(PacketCreateOrder, r.provider, r.cloudName, OrderPayload{Order: env})
	if err != nil {
		return err
	}
	return exchange(ctx, r.sender, packet, nil)
}

type RemoteDeleteOrderRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
}

func NewRemoteDeleteOrderRequest(sender PacketSender, provider, cloudName string, order model.Order) *RemoteDeleteOrderRequest {
	return &RemoteDeleteOrderRequest{sender: sender, provider: provider, cloudName: cloudName, order: order}
}

func (r *RemoteDeleteOrderRequest) Send(ctx context.Context) error {
	packet, err := orderRefPacket(PacketDeleteOrder, r.provider, r.cloudName, r.order)
	if err != nil {
		return err
	}
	return exchange(ctx, r.sender, packet, nil)
}

type RemoteGetInstanceRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
}

func NewRemoteGetInstanceRequest(sender PacketSender, provider, cloudName string, order model.Order) *RemoteGetInstanceRequest {
	return &RemoteGetInstanceRequest{sender: sender, provider: provider, cloudName: cloudName, order: order}
}

func (r *RemoteGetInstanceRequest) Send(ctx context.Context) (model.OrderInstance, error) {
	packet, err := orderRefPacket(PacketGetInstance, r.provider, r.cloudName, r.order)
	if err != nil {
		return nil, err
	}
	var env model.Envelope
	if err := exchange(ctx, r.sender, packet, &env); err != nil {
		return nil, err
	}
	return env.Instance()
}

// RemoteGetOrderRequest fetches the copy of an order held by its provider.
type RemoteGetOrderRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
}

func NewRemoteGetOrderRequest(sender PacketSender, provider, cloudName string, order model.Order) *RemoteGetOrderRequest {
	return &RemoteGetOrderRequest{sender: sender, provider: provider, cloudName: cloudName, order: order}
}

func (r *RemoteGetOrderRequest) Send(ctx context.Context) (model.Order, error) {
	packet, err := orderRefPacket(PacketGetOrder, r.provider, r.cloudName, r.order)
	if err != nil {
		return nil, err
	}
	var env model.Envelope
	if err := exchange(ctx, r.sender, packet, &env); err != nil {
		return nil, err
	}
	return env.Order()
}

func orderRefPacket(packetType PacketType, provider, cloudName string, order model.Order) (*Packet, error) {
	base := order.Base()
	return NewPacket(packetType, provider, cloudName, OrderRefPayload{
		OrderID:      base.ID,
		ResourceType: base.Type,
		User:         base.SystemUser,
	})
}

type RemoteGetUserQuotaRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	user      *model.SystemUser
}

func NewRemoteGetUserQuotaRequest(sender PacketSender, provider, cloudName string, user *model.SystemUser) *RemoteGetUserQuotaRequest {
	return &RemoteGetUserQuotaRequest{sender: sender, provider: provider, cloudName: cloudName, user: user}
}

func (r *RemoteGetUserQuotaRequest) Send(ctx context.Context) (*model.Quota, error) {
	packet, err := NewPacket(PacketGetUserQuota, r.provider, r.cloudName, UserPayload{User: r.user})
	if err != nil {
		return nil, err
	}
	var quota model.Quota
	if err := exchange(ctx, r.sender, packet, &quota); err != nil {
		return nil, err
	}
	return &quota, nil
}

type RemoteGetAllImagesRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	user      *model.SystemUser
}

func NewRemoteGetAllImagesRequest(sender PacketSender, provider, cloudName string, user *model.SystemUser) *RemoteGetAllImagesRequest {
	return &RemoteGetAllImagesRequest{sender: sender, provider: provider, cloudName: cloudName, user: user}
}

func (r *RemoteGetAllImagesRequest) Send(ctx context.Context) ([]model.ImageSummary, error) {
	packet, err := NewPacket(PacketGetAllImages, r.provider, r.cloudName, UserPayload{User: r.user})
	if err != nil {
		return nil, err
	}
	var images []model.ImageSummary
	if err := exchange(ctx, r.sender, packet, &images); err != nil {
		return nil, err
	}
	return images, nil
}

type RemoteGetImageRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	imageID   string
	user      *model.SystemUser
}

func NewRemoteGetImageRequest(sender PacketSender, provider, cloudName, imageID string, user *model.SystemUser) *RemoteGetImageRequest {
	return &RemoteGetImageRequest{sender: sender, provider: provider, cloudName: cloudName, imageID: imageID, user: user}
}

func (r *RemoteGetImageRequest) Send(ctx context.Context) (*model.ImageInstance, error) {
	packet, err := NewPacket(PacketGetImage, r.provider, r.cloudName, ImagePayload{ImageID: r.imageID, User: r.user})
	if err != nil {
		return nil, err
	}
	var image model.ImageInstance
	if err := exchange(ctx, r.sender, packet, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

type RemoteGetAllSecurityRulesRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
	user      *model.SystemUser
}

func NewRemoteGetAllSecurityRulesRequest(sender PacketSender, provider, cloudName string, order model.Order, user *model.SystemUser) *RemoteGetAllSecurityRulesRequest {
	return &RemoteGetAllSecurityRulesRequest{sender: sender, provider: provider, cloudName: cloudName, order: order, user: user}
}

func (r *RemoteGetAllSecurityRulesRequest) Send(ctx context.Context) ([]model.SecurityRuleInstance, error) {
	packet, err := NewPacket(PacketGetAllSecurityRule, r.provider, r.cloudName, SecurityRulePayload{OrderID: r.order.Base().ID, User: r.user})
	if err != nil {
		return nil, err
	}
	var rules []model.SecurityRuleInstance
	if err := exchange(ctx, r.sender, packet, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

type RemoteCreateSecurityRuleRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	order     model.Order
	rule      model.SecurityRule
	user      *model.SystemUser
}

func NewRemoteCreateSecurityRuleRequest(sender PacketSender, provider, cloudName string, order model.Order, rule model.SecurityRule, user *model.SystemUser) *RemoteCreateSecurityRuleRequest {
	return &RemoteCreateSecurityRuleRequest{sender: sender, provider: provider, cloudName: cloudName, order: order, rule: rule, user: user}
}

// Send returns the id the providing peer assigned to the rule.
func (r *RemoteCreateSecurityRuleRequest) Send(ctx context.Context) (string, error) {
	packet, err := NewPacket(PacketCreateSecurityRule, r.provider, r.cloudName, SecurityRulePayload{OrderID: r.order.Base().ID, Rule: &r.rule, User: r.user})
	if err != nil {
		return "", err
	}
	var id IDPayload
	if err := exchange(ctx, r.sender, packet, &id); err != nil {
		return "", err
	}
	return id.ID, nil
}

type RemoteDeleteSecurityRuleRequest struct {
	sender    PacketSender
	provider  string
	cloudName string
	ruleID    string
	user      *model.SystemUser
}

func NewRemoteDeleteSecurityRuleRequest(sender PacketSender, provider, cloudName, ruleID string, user *model.SystemUser) *RemoteDeleteSecurityRuleRequest {
	return &RemoteDeleteSecurityRuleRequest{sender: sender, provider: provider, cloudName: cloudName, ruleID: ruleID, user: user}
}

func (r *RemoteDeleteSecurityRuleRequest) Send(ctx context.Context) error {
	packet, err := NewPacket(PacketDeleteSecurityRule, r.provider, r.cloudName, RuleRefPayload{RuleID: r.ruleID, User: r.user})
	if err != nil {
		return err
	}
	return exchange(ctx, r.sender, packet, nil)
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package facade serves the packets peers send to this provider. Every
// operation runs through a local connector, so identity mapping and auditing
// happen here, at the providing side.
package facade

import (
	"context"
	"errors"
	"log/slog"

	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/orders"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// ConnectorFactory is implemented by *cloudconnector.Factory.
type ConnectorFactory interface {
	LocalID() string
	GetConnector(providerID, cloudName string) (cloudconnector.CloudConnector, error)
}

type RemoteFacade struct {
	factory ConnectorFactory
	orders  *orders.Holder
}

func NewRemoteFacade(factory ConnectorFactory, holder *orders.Holder) *RemoteFacade {
	return &RemoteFacade{factory: factory, orders: holder}
}

type handler func(f *RemoteFacade, ctx context.Context, p *intercomponent.Packet) (any, error)

var handlers = map[intercomponent.PacketType]handler{
	intercomponent.PacketCreateOrder:        (*RemoteFacade).createOrder,
	intercomponent.PacketDeleteOrder:        (*RemoteFacade).deleteOrder,
	intercomponent.PacketGetOrder:           (*RemoteFacade).getOrder,
	intercomponent.PacketGetInstance:        (*RemoteFacade).getInstance,
	intercomponent.PacketGetUserQuota:       (*RemoteFacade).getUserQuota,
	intercomponent.PacketGetAllImages:       (*RemoteFacade).getAllImages,
	intercomponent.PacketGetImage:           (*RemoteFacade).getImage,
	intercomponent.PacketGetAllSecurityRule: (*RemoteFacade).getAllSecurityRules,
	intercomponent.PacketCreateSecurityRule: (*RemoteFacade).createSecurityRule,
	intercomponent.PacketDeleteSecurityRule: (*RemoteFacade).deleteSecurityRule,
}

// HandlePacket always answers. A failure travels back as the reply's
// condition.
func (f *RemoteFacade) HandlePacket(ctx context.Context, p *intercomponent.Packet) *intercomponent.Packet {
	slog.Debug("Handling packet", "id", p.ID, "type", p.Type, "from", p.From, "cloud", p.CloudName)

	payload, err := f.dispatch(ctx, p)
	if err != nil {
		attrs := []any{"id", p.ID, "type", p.Type, "from", p.From, "error", err}
		if errors.Is(err, model.ErrInstanceNotFound) {
			slog.Info("Packet refers to an unknown resource", attrs...)
		} else {
			slog.Error("Failed to handle packet", attrs...)
		}
		return p.Fail(err)
	}

	reply, err := p.Reply(payload)
	if err != nil {
		slog.Error("Failed to encode reply", "id", p.ID, "type", p.Type, "error", err)
		return p.Fail(model.WrapError(model.KindUnexpected, err))
	}
	return reply
}

func (f *RemoteFacade) dispatch(ctx context.Context, p *intercomponent.Packet) (any, error) {
	if p.To != f.factory.LocalID() {
		return nil, model.NewInvalidParameterError("packet addressed to %s reached provider %s", p.To, f.factory.LocalID())
	}
	if p.From == "" {
		return nil, model.NewInvalidParameterError("packet %s has no sender", p.ID)
	}
	h, ok := handlers[p.Type]
	if !ok {
		return nil, model.NewInvalidParameterError("unsupported packet type %q", p.Type)
	}
	return h(f, ctx, p)
}

func (f *RemoteFacade) connector(cloudName string) (cloudconnector.CloudConnector, error) {
	return f.factory.GetConnector(f.factory.LocalID(), cloudName)
}

// checkConsistency verifies an order received from, or referenced by, a peer
// really belongs to that peer and is served here.
func (f *RemoteFacade) checkConsistency(from string, order model.Order) error {
	base := order.Base()
	if base.Requester != from {
		return model.NewInvalidParameterError("order %s was requested by %s, not %s", base.ID, base.Requester, from)
	}
	if base.Provider != f.factory.LocalID() {
		return model.NewInstanceNotFoundError("order %s is not provided by %s", base.ID, f.factory.LocalID())
	}
	return nil
}

func checkOwner(order model.Order, user *model.SystemUser) error {
	if user == nil {
		return model.NewUnauthenticatedError("no user in request")
	}
	owner := order.Base().SystemUser
	if owner == nil || owner.ID != user.ID || owner.IdentityProviderID != user.IdentityProviderID {
		return model.NewError(model.KindUnauthorized, "user %s does not own order %s", user, order.Base().ID)
	}
	return nil
}

// lookup finds an order a peer references and checks the peer and the user
// may act on it.
func (f *RemoteFacade) lookup(from, orderID string, user *model.SystemUser) (model.Order, error) {
	order, err := f.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := f.checkConsistency(from, order); err != nil {
		return nil, err
	}
	if err := checkOwner(order, user); err != nil {
		return nil, err
	}
	return order, nil
}

func (f *RemoteFacade) lookupRef(p *intercomponent.Packet) (model.Order, error) {
	var ref intercomponent.OrderRefPayload
	if err := p.Decode(&ref); err != nil {
		return nil, err
	}
	order, err := f.lookup(p.From, ref.OrderID, ref.User)
	if err != nil {
		return nil, err
	}
	if ref.ResourceType != order.Base().Type {
		return nil, model.NewMismatchingResourceTypeError(ref.ResourceType, order)
	}
	return order, nil
}

// update changes the held order. An order removed meanwhile by a delete
// packet is only worth a warning.
func (f *RemoteFacade) update(orderID string, fn func(model.Order)) {
	if err := f.orders.Update(orderID, fn); err != nil {
		slog.Warn("Held order vanished before update", "orderId", orderID, "error", err)
	}
}

func (f *RemoteFacade) createOrder(ctx context.Context, p *intercomponent.Packet) (any, error) {
	var payload intercomponent.OrderPayload
	if err := p.Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Order == nil {
		return nil, model.NewInvalidParameterError("%s packet %s has no order", p.Type, p.ID)
	}
	order, err := payload.Order.Order()
	if err != nil {
		return nil, err
	}
	if err := f.checkConsistency(p.From, order); err != nil {
		return nil, err
	}

	base := order.Base()
	c, err := f.connector(base.CloudName)
	if err != nil {
		return nil, err
	}
	if named, ok := c.(interface{ CloudName() string }); ok {
		base.CloudName = named.CloudName()
	}

	base.State = model.OrderStatePending
	if err := f.orders.Activate(order); err != nil {
		return nil, err
	}

	id, err := c.RequestInstance(ctx, order)
	if err != nil {
		f.update(base.ID, func(o model.Order) { o.Base().State = model.OrderStateFailedOnRequest })
		return nil, err
	}
	f.update(base.ID, func(o model.Order) {
		o.Base().InstanceID = id
		o.Base().State = model.OrderStateSpawning
		// The plugin records what the cloud granted on the request's copy.
		src, ok := order.(*model.ComputeOrder)
		dst, same := o.(*model.ComputeOrder)
		if ok && same && src.Allocation != nil {
			a := *src.Allocation
			dst.Allocation = &a
		}
	})
	slog.Info("Activated remote order", "orderId", base.ID, "requester", p.From, "cloud", base.CloudName, "instanceId", id)
	return nil, nil
}

func (f *RemoteFacade) deleteOrder(ctx context.Context, p *intercomponent.Packet) (any, error) {
	order, err := f.lookupRef(p)
	if err != nil {
		return nil, err
	}
	base := order.Base()
	c, err := f.connector(base.CloudName)
	if err != nil {
		return nil, err
	}

	err = c.DeleteInstance(ctx, order)
	if err != nil && !errors.Is(err, model.ErrInstanceNotFound) {
		return nil, err
	}
	f.orders.Remove(base.ID)
	return nil, err
}

func (f *RemoteFacade) getOrder(_ context.Context, p *intercomponent.Packet) (any, error) {
	order, err := f.lookupRef(p)
	if err != nil {
		return nil, err
	}
	return model.OrderEnvelope(order)
}

func (f *RemoteFacade) getInstance(ctx context.Context, p *intercomponent.Packet) (any, error) {
	order, err := f.lookupRef(p)
	if err != nil {
		return nil, err
	}
	c, err := f.connector(order.Base().CloudName)
	if err != nil {
		return nil, err
	}
	instance, err := c.GetInstance(ctx, order)
	if err != nil {
		return nil, err
	}

	b := instance.Instance()
	f.update(order.Base().ID, func(o model.Order) {
		switch {
		case b.Ready:
			o.Base().State = model.OrderStateFulfilled
		case b.Failed && o.Base().HasInstance():
			o.Base().State = model.OrderStateFailedAfterSuccessfulRequest
		}
	})
	return model.InstanceEnvelope(instance)
}

func (f *RemoteFacade) getUserQuota(ctx context.Context, p *intercomponent.Packet) (any, error) {
	var payload intercomponent.UserPayload
	if err := p.Decode(&payload); err != nil {
		return nil, err
	}
	c, err := f.connector(p.CloudName)
	if err != nil {
		return nil, err
	}
	return c.GetUserQuota(ctx, payload.User)
}

func (f *RemoteFacade) getAllImages(ctx context.Context, p *intercomponent.Packet) (any, error) {
	var payload intercomponent.UserPayload
	if err := p.Decode(&payload); err != nil {
		return nil, err
	}
	c, err := f.connector(p.CloudName)
	if err != nil {
		return nil, err
	}
	images, err := c.GetAllImages(ctx, payload.User)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []model.ImageSummary{}
	}
	return images, nil
}

func (f *RemoteFacade) getImage(ctx context.Context, p *intercomponent.Packet) (any, error) {
	var payload intercomponent.ImagePayload
	if err := p.Decode(&payload); err != nil {
		return nil, err
	}
	c, err := f.connector(p.CloudName)
	if err != nil {
		return nil, err
	}
	return c.GetImage(ctx, payload.ImageID, payload.User)
}

func (f *RemoteFacade) ruleOrder(p *intercomponent.Packet) (intercomponent.SecurityRulePayload, model.Order, cloudconnector.CloudConnector, error) {
	var payload intercomponent.SecurityRulePayload
	if err := p.Decode(&payload); err != nil {
		return payload, nil, nil, err
	}
	order, err := f.lookup(p.From, payload.OrderID, payload.User)
	if err != nil {
		return payload, nil, nil, err
	}
	c, err := f.connector(order.Base().CloudName)
	return payload, order, c, err
}

func (f *RemoteFacade) getAllSecurityRules(ctx context.Context, p *intercomponent.Packet) (any, error) {
	payload, order, c, err := f.ruleOrder(p)
	if err != nil {
		return nil, err
	}
	rules, err := c.GetAllSecurityRules(ctx, order, payload.User)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []model.SecurityRuleInstance{}
	}
	return rules, nil
}

func (f *RemoteFacade) createSecurityRule(ctx context.Context, p *intercomponent.Packet) (any, error) {
	payload, order, c, err := f.ruleOrder(p)
	if err != nil {
		return nil, err
	}
	if payload.Rule == nil {
		return nil, model.NewInvalidParameterError("%s packet %s has no rule", p.Type, p.ID)
	}
	id, err := c.RequestSecurityRule(ctx, order, *payload.Rule, payload.User)
	if err != nil {
		return nil, err
	}
	return intercomponent.IDPayload{ID: id}, nil
}

func (f *RemoteFacade) deleteSecurityRule(ctx context.Context, p *intercomponent.Packet) (any, error) {
	var payload intercomponent.RuleRefPayload
	if err := p.Decode(&payload); err != nil {
		return nil, err
	}
	c, err := f.connector(p.CloudName)
	if err != nil {
		return nil, err
	}
	return nil, c.DeleteSecurityRule(ctx, payload.RuleID, payload.User)
}

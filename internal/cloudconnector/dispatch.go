// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"context"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

// instanceOps is an order bound to the plugin that serves its resource type.
type instanceOps interface {
	request(ctx context.Context, user *model.CloudUser) (string, error)
	// get returns a nil instance when the plugin returned none.
	get(ctx context.Context, user *model.CloudUser) (model.OrderInstance, error)
	remove(ctx context.Context, user *model.CloudUser) error
	isReady(cloudState string) bool
	hasFailed(cloudState string) bool
}

type bound[O model.Order, I model.OrderInstance] struct {
	plugin plugin.OrderPlugin[O, I]
	order  O
}

func bind[O model.Order, I model.OrderInstance](p plugin.OrderPlugin[O, I], order model.Order) (instanceOps, error) {
	o, ok := order.(O)
	if !ok {
		return nil, model.NewMismatchingResourceTypeError(order.Base().Type, order)
	}
	return &bound[O, I]{plugin: p, order: o}, nil
}

func (b *bound[O, I]) request(ctx context.Context, user *model.CloudUser) (string, error) {
	return b.plugin.RequestInstance(ctx, b.order, user)
}

func (b *bound[O, I]) get(ctx context.Context, user *model.CloudUser) (model.OrderInstance, error) {
	instance, err := b.plugin.GetInstance(ctx, b.order, user)
	if err != nil {
		return nil, err
	}
	var none I
	if any(instance) == any(none) {
		return nil, nil
	}
	return instance, nil
}

func (b *bound[O, I]) remove(ctx context.Context, user *model.CloudUser) error {
	return b.plugin.DeleteInstance(ctx, b.order, user)
}

func (b *bound[O, I]) isReady(cloudState string) bool   { return b.plugin.IsReady(cloudState) }
func (b *bound[O, I]) hasFailed(cloudState string) bool { return b.plugin.HasFailed(cloudState) }

// resolve picks the plugin from the declared type and then checks the order
// really is of the variant that plugin expects. No plugin runs when the
// declared type and the concrete order disagree.
func resolve(plugins *plugin.Set, order model.Order) (instanceOps, error) {
	switch declared := order.Base().Type; declared {
	case model.ResourceTypeCompute:
		return bind[*model.ComputeOrder, *model.ComputeInstance](plugins.Compute, order)
	case model.ResourceTypeNetwork:
		return bind[*model.NetworkOrder, *model.NetworkInstance](plugins.Network, order)
	case model.ResourceTypeVolume:
		return bind[*model.VolumeOrder, *model.VolumeInstance](plugins.Volume, order)
	case model.ResourceTypeAttachment:
		return bind[*model.AttachmentOrder, *model.AttachmentInstance](plugins.Attachment, order)
	case model.ResourceTypePublicIP:
		return bind[*model.PublicIPOrder, *model.PublicIPInstance](plugins.PublicIP, order)
	default:
		return nil, model.NewMismatchingResourceTypeError(declared, order)
	}
}

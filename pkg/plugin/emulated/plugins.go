// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emulated

import (
	"context"
	"net/netip"

	"go.opentelemetry.io/otel/attribute"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

const defaultDevice = "/dev/vdb"

func requireUser(user *model.CloudUser) error {
	if user == nil {
		return model.NewUnauthenticatedError("a cloud user is required")
	}
	return nil
}

func requireInstanceID(order model.Order) (string, error) {
	base := order.Base()
	if !base.HasInstance() {
		return "", model.NewInvalidParameterError("order %s has no instance yet", base.ID)
	}
	return base.InstanceID, nil
}

func created(ctx context.Context, kind model.ResourceType, id string, attrs ...attribute.KeyValue) {
	plugin.MetricsFromContext(ctx).Counter("resources.created", 1, append(attrs, attribute.String("resourceType", kind.String()))...)
	plugin.LoggerFromContext(ctx).Info("Provisioned resource", "resourceType", kind.String(), "instanceId", id)
}

func deleted(ctx context.Context, kind model.ResourceType, id string) {
	plugin.MetricsFromContext(ctx).Counter("resources.deleted", 1, attribute.String("resourceType", kind.String()))
	plugin.LoggerFromContext(ctx).Info("Released resource", "resourceType", kind.String(), "instanceId", id)
}

type ComputePlugin struct {
	classifier
	cloud *Cloud
}

func (p *ComputePlugin) RequestInstance(ctx context.Context, order *model.ComputeOrder, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	if order.ImageID != "" {
		if _, ok := p.cloud.images[order.ImageID]; !ok {
			return "", model.NewInvalidParameterError("unknown image %s", order.ImageID)
		}
	}

	want := model.HardwareRequirements{CPU: order.VCPU, Memory: order.Memory, Disk: order.Disk}
	flavor, ok := p.cloud.flavors.Smallest(want)
	if !ok {
		return "", model.NewInvalidParameterError("no flavor of cloud %s satisfies %d vCPU, %d MB memory, %d GB disk", p.cloud.name, want.CPU, want.Memory, want.Disk)
	}

	id, err := p.cloud.create(&resource{
		kind:    model.ResourceTypeCompute,
		name:    order.Name,
		flavor:  flavor,
		imageID: order.ImageID,
		allocation: model.ResourceAllocation{
			Instances: 1,
			VCPU:      flavor.CPU,
			RAM:       flavor.Memory,
			Disk:      flavor.Disk,
		},
	})
	if err != nil {
		return "", err
	}

	order.Allocation = &model.ComputeAllocation{VCPU: flavor.CPU, Memory: flavor.Memory, Disk: flavor.Disk}
	created(ctx, model.ResourceTypeCompute, id, attribute.String("flavor", flavor.Name))
	return id, nil
}

func (p *ComputePlugin) GetInstance(ctx context.Context, order *model.ComputeOrder, user *model.CloudUser) (*model.ComputeInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	r, err := p.cloud.read(model.ResourceTypeCompute, order.InstanceID)
	if err != nil {
		return nil, err
	}

	instance := model.NewComputeInstance(r.id)
	instance.CloudState = r.state
	instance.State = MapState(model.ResourceTypeCompute, r.state)
	instance.Name = r.name
	instance.VCPU = r.flavor.CPU
	instance.Memory = r.flavor.Memory
	instance.Disk = r.flavor.Disk
	instance.ImageID = r.imageID
	instance.FlavorID = r.flavor.FlavorID
	return instance, nil
}

func (p *ComputePlugin) DeleteInstance(ctx context.Context, order *model.ComputeOrder, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.remove(model.ResourceTypeCompute, order.InstanceID); err != nil {
		return err
	}
	deleted(ctx, model.ResourceTypeCompute, order.InstanceID)
	return nil
}

type NetworkPlugin struct {
	classifier
	cloud *Cloud
}

func (p *NetworkPlugin) RequestInstance(ctx context.Context, order *model.NetworkOrder, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	prefix, err := netip.ParsePrefix(order.CIDR)
	if err != nil {
		return "", model.NewInvalidParameterError("invalid cidr %q", order.CIDR)
	}
	gateway := order.Gateway
	if gateway == "" {
		gateway = prefix.Masked().Addr().Next().String()
	}

	id, err := p.cloud.create(&resource{
		kind:       model.ResourceTypeNetwork,
		name:       order.Name,
		cidr:       prefix.Masked().String(),
		gateway:    gateway,
		allocation: model.ResourceAllocation{Networks: 1},
	})
	if err != nil {
		return "", err
	}
	created(ctx, model.ResourceTypeNetwork, id)
	return id, nil
}

func (p *NetworkPlugin) GetInstance(ctx context.Context, order *model.NetworkOrder, user *model.CloudUser) (*model.NetworkInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	r, err := p.cloud.read(model.ResourceTypeNetwork, order.InstanceID)
	if err != nil {
		return nil, err
	}

	instance := model.NewNetworkInstance(r.id)
	instance.CloudState = r.state
	instance.State = MapState(model.ResourceTypeNetwork, r.state)
	instance.Name = r.name
	instance.CIDR = r.cidr
	instance.Gateway = r.gateway
	return instance, nil
}

func (p *NetworkPlugin) DeleteInstance(ctx context.Context, order *model.NetworkOrder, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.remove(model.ResourceTypeNetwork, order.InstanceID); err != nil {
		return err
	}
	deleted(ctx, model.ResourceTypeNetwork, order.InstanceID)
	return nil
}

type VolumePlugin struct {
	classifier
	cloud *Cloud
}

func (p *VolumePlugin) RequestInstance(ctx context.Context, order *model.VolumeOrder, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	if order.VolumeSize <= 0 {
		return "", model.NewInvalidParameterError("volume size must be positive, got %d", order.VolumeSize)
	}

	id, err := p.cloud.create(&resource{
		kind:       model.ResourceTypeVolume,
		name:       order.Name,
		size:       order.VolumeSize,
		allocation: model.ResourceAllocation{Volumes: 1, Disk: order.VolumeSize},
	})
	if err != nil {
		return "", err
	}
	created(ctx, model.ResourceTypeVolume, id)
	return id, nil
}

func (p *VolumePlugin) GetInstance(ctx context.Context, order *model.VolumeOrder, user *model.CloudUser) (*model.VolumeInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	r, err := p.cloud.read(model.ResourceTypeVolume, order.InstanceID)
	if err != nil {
		return nil, err
	}

	instance := model.NewVolumeInstance(r.id)
	instance.CloudState = r.state
	instance.State = MapState(model.ResourceTypeVolume, r.state)
	instance.Name = r.name
	instance.Size = r.size
	return instance, nil
}

func (p *VolumePlugin) DeleteInstance(ctx context.Context, order *model.VolumeOrder, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.remove(model.ResourceTypeVolume, order.InstanceID); err != nil {
		return err
	}
	deleted(ctx, model.ResourceTypeVolume, order.InstanceID)
	return nil
}

type AttachmentPlugin struct {
	classifier
	cloud *Cloud
}

func (p *AttachmentPlugin) RequestInstance(ctx context.Context, order *model.AttachmentOrder, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	if !p.cloud.exists(model.ResourceTypeCompute, order.ComputeID) {
		return "", model.NewInstanceNotFoundError("compute %s not found in cloud %s", order.ComputeID, p.cloud.name)
	}
	if !p.cloud.exists(model.ResourceTypeVolume, order.VolumeID) {
		return "", model.NewInstanceNotFoundError("volume %s not found in cloud %s", order.VolumeID, p.cloud.name)
	}
	device := order.Device
	if device == "" {
		device = defaultDevice
	}

	id, err := p.cloud.create(&resource{
		kind:      model.ResourceTypeAttachment,
		computeID: order.ComputeID,
		volumeID:  order.VolumeID,
		device:    device,
	})
	if err != nil {
		return "", err
	}
	created(ctx, model.ResourceTypeAttachment, id)
	return id, nil
}

func (p *AttachmentPlugin) GetInstance(ctx context.Context, order *model.AttachmentOrder, user *model.CloudUser) (*model.AttachmentInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	r, err := p.cloud.read(model.ResourceTypeAttachment, order.InstanceID)
	if err != nil {
		return nil, err
	}

	instance := model.NewAttachmentInstance(r.id)
	instance.CloudState = r.state
	instance.State = MapState(model.ResourceTypeAttachment, r.state)
	instance.ComputeID = r.computeID
	instance.VolumeID = r.volumeID
	instance.Device = r.device
	return instance, nil
}

func (p *AttachmentPlugin) DeleteInstance(ctx context.Context, order *model.AttachmentOrder, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.remove(model.ResourceTypeAttachment, order.InstanceID); err != nil {
		return err
	}
	deleted(ctx, model.ResourceTypeAttachment, order.InstanceID)
	return nil
}

type PublicIPPlugin struct {
	classifier
	cloud *Cloud
}

func (p *PublicIPPlugin) RequestInstance(ctx context.Context, order *model.PublicIPOrder, user *model.CloudUser) (string, error) {
	if err := requireUser(user); err != nil {
		return "", err
	}
	if !p.cloud.exists(model.ResourceTypeCompute, order.ComputeID) {
		return "", model.NewInstanceNotFoundError("compute %s not found in cloud %s", order.ComputeID, p.cloud.name)
	}

	id, err := p.cloud.create(&resource{
		kind:       model.ResourceTypePublicIP,
		computeID:  order.ComputeID,
		ip:         p.cloud.nextIP(),
		allocation: model.ResourceAllocation{PublicIPs: 1},
	})
	if err != nil {
		return "", err
	}
	created(ctx, model.ResourceTypePublicIP, id)
	return id, nil
}

func (p *PublicIPPlugin) GetInstance(ctx context.Context, order *model.PublicIPOrder, user *model.CloudUser) (*model.PublicIPInstance, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	r, err := p.cloud.read(model.ResourceTypePublicIP, order.InstanceID)
	if err != nil {
		return nil, err
	}

	instance := model.NewPublicIPInstance(r.id)
	instance.CloudState = r.state
	instance.State = MapState(model.ResourceTypePublicIP, r.state)
	instance.IP = r.ip
	return instance, nil
}

func (p *PublicIPPlugin) DeleteInstance(ctx context.Context, order *model.PublicIPOrder, user *model.CloudUser) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := p.cloud.remove(model.ResourceTypePublicIP, order.InstanceID); err != nil {
		return err
	}
	deleted(ctx, model.ResourceTypePublicIP, order.InstanceID)
	return nil
}

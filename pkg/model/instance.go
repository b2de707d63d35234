// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "fmt"

// InstanceState is the federation level lifecycle of a cloud resource,
// normalized from whatever the cloud reports.
type InstanceState string

const (
	InstanceStateDispatched   InstanceState = "DISPATCHED"
	InstanceStateCreating     InstanceState = "CREATING"
	InstanceStateReady        InstanceState = "READY"
	InstanceStateBusy         InstanceState = "BUSY"
	InstanceStateFailed       InstanceState = "FAILED"
	InstanceStateInconsistent InstanceState = "INCONSISTENT"
	InstanceStateUnavailable  InstanceState = "UNAVAILABLE"
	InstanceStatePaused       InstanceState = "PAUSED"
	InstanceStateHibernated   InstanceState = "HIBERNATED"
	InstanceStateStopped      InstanceState = "STOPPED"
	InstanceStateUnknown      InstanceState = "UNKNOWN"
)

// OrderInstance is the live cloud resource behind an order.
type OrderInstance interface {
	Instance() *BaseInstance
	Kind() ResourceType
	String() string
}

type BaseInstance struct {
	ID         string        `json:"id"`
	CloudState string        `json:"cloudState"`
	State      InstanceState `json:"state"`
	Ready      bool          `json:"ready"`
	Failed     bool          `json:"failed"`
	Provider   string        `json:"provider,omitempty"`
	CloudName  string        `json:"cloudName,omitempty"`
}

func (i *BaseInstance) Instance() *BaseInstance {
	return i
}

// SetReady marks the instance ready and clears the failed flag.
func (i *BaseInstance) SetReady() {
	i.Ready = true
	i.Failed = false
	i.State = InstanceStateReady
}

// SetFailed marks the instance failed and clears the ready flag.
func (i *BaseInstance) SetFailed() {
	i.Failed = true
	i.Ready = false
	i.State = InstanceStateFailed
}

func (i *BaseInstance) describe(kind ResourceType) string {
	return fmt.Sprintf("%s{id=%s, state=%s, cloudState=%s, ready=%t, failed=%t}", kind, i.ID, i.State, i.CloudState, i.Ready, i.Failed)
}

type ComputeInstance struct {
	BaseInstance
	Name      string   `json:"name,omitempty"`
	VCPU      int      `json:"vCPU"`
	Memory    int      `json:"memory"`
	Disk      int      `json:"disk"`
	IPAddress []string `json:"ipAddresses,omitempty"`
	ImageID   string   `json:"imageId,omitempty"`
	FlavorID  string   `json:"flavorId,omitempty"`
}

func NewComputeInstance(id string) *ComputeInstance {
	return &ComputeInstance{BaseInstance: BaseInstance{ID: id}}
}

func (*ComputeInstance) Kind() ResourceType { return ResourceTypeCompute }
func (c *ComputeInstance) String() string   { return c.describe(ResourceTypeCompute) }

type NetworkInstance struct {
	BaseInstance
	Name    string `json:"name,omitempty"`
	CIDR    string `json:"cidr,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	VLAN    string `json:"vlan,omitempty"`
}

func NewNetworkInstance(id string) *NetworkInstance {
	return &NetworkInstance{BaseInstance: BaseInstance{ID: id}}
}

func (*NetworkInstance) Kind() ResourceType { return ResourceTypeNetwork }
func (n *NetworkInstance) String() string   { return n.describe(ResourceTypeNetwork) }

type VolumeInstance struct {
	BaseInstance
	Name string `json:"name,omitempty"`
	Size int    `json:"size"`
}

func NewVolumeInstance(id string) *VolumeInstance {
	return &VolumeInstance{BaseInstance: BaseInstance{ID: id}}
}

func (*VolumeInstance) Kind() ResourceType { return ResourceTypeVolume }
func (v *VolumeInstance) String() string   { return v.describe(ResourceTypeVolume) }

type AttachmentInstance struct {
	BaseInstance
	ComputeID string `json:"computeId,omitempty"`
	VolumeID  string `json:"volumeId,omitempty"`
	Device    string `json:"device,omitempty"`
}

func NewAttachmentInstance(id string) *AttachmentInstance {
	return &AttachmentInstance{BaseInstance: BaseInstance{ID: id}}
}

func (*AttachmentInstance) Kind() ResourceType { return ResourceTypeAttachment }
func (a *AttachmentInstance) String() string   { return a.describe(ResourceTypeAttachment) }

type PublicIPInstance struct {
	BaseInstance
	IP string `json:"ip,omitempty"`
}

func NewPublicIPInstance(id string) *PublicIPInstance {
	return &PublicIPInstance{BaseInstance: BaseInstance{ID: id}}
}

func (*PublicIPInstance) Kind() ResourceType { return ResourceTypePublicIP }
func (p *PublicIPInstance) String() string   { return p.describe(ResourceTypePublicIP) }

// NewEmptyInstance builds the placeholder returned for an order the cloud has
// not assigned an instance to yet. It carries the order id and a state derived
// from the order lifecycle.
func NewEmptyInstance(order Order) OrderInstance {
	base := order.Base()

	var instance OrderInstance
	switch order.(type) {
	case *ComputeOrder:
		instance = NewComputeInstance(base.ID)
	case *NetworkOrder:
		instance = NewNetworkInstance(base.ID)
	case *VolumeOrder:
		instance = NewVolumeInstance(base.ID)
	case *AttachmentOrder:
		instance = NewAttachmentInstance(base.ID)
	case *PublicIPOrder:
		instance = NewPublicIPInstance(base.ID)
	default:
		return nil
	}

	bi := instance.Instance()
	bi.Provider = base.Provider
	bi.CloudName = base.CloudName
	switch base.State {
	case OrderStateOpen, OrderStateSelected, OrderStatePending:
		bi.State = InstanceStateDispatched
	case OrderStateFailedOnRequest, OrderStateFailedAfterSuccessfulRequest:
		bi.State = InstanceStateFailed
		bi.Failed = true
	default:
		bi.State = InstanceStateUnknown
	}

	return instance
}

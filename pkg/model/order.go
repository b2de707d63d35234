// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

type OrderState string

const (
	OrderStateOpen                         OrderState = "OPEN"
	OrderStateSelected                     OrderState = "SELECTED"
	OrderStatePending                      OrderState = "PENDING"
	OrderStateSpawning                     OrderState = "SPAWNING"
	OrderStateFulfilled                    OrderState = "FULFILLED"
	OrderStateFailedAfterSuccessfulRequest OrderState = "FAILED_AFTER_SUCCESSFUL_REQUEST"
	OrderStateFailedOnRequest              OrderState = "FAILED_ON_REQUEST"
	OrderStateUnableToCheckStatus          OrderState = "UNABLE_TO_CHECK_STATUS"
	OrderStateAssignedForDeletion          OrderState = "ASSIGNED_FOR_DELETION"
	OrderStateCheckingDeletion             OrderState = "CHECKING_DELETION"
	OrderStateClosed                       OrderState = "CLOSED"
	OrderStateDeactivated                  OrderState = "DEACTIVATED"
)

// Order is a federation level request for a resource. The set of
// implementations is closed: ComputeOrder, NetworkOrder, VolumeOrder,
// AttachmentOrder and PublicIPOrder.
type Order interface {
	// Base gives access to the fields shared by every order.
	Base() *BaseOrder
	// Kind is the resource type the concrete variant stands for. It never
	// changes, unlike the declared BaseOrder.Type which can arrive from the
	// wire with any value.
	Kind() ResourceType
	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Order

	isOrder()
}

type BaseOrder struct {
	ID         string       `json:"id"`
	Type       ResourceType `json:"type"`
	SystemUser *SystemUser  `json:"systemUser,omitempty"`
	Provider   string       `json:"provider"`
	Requester  string       `json:"requester"`
	CloudName  string       `json:"cloudName"`
	InstanceID string       `json:"instanceId,omitempty"`
	State      OrderState   `json:"orderState"`
}

func (o *BaseOrder) Base() *BaseOrder {
	return o
}

// HasInstance reports whether the cloud already assigned an instance id.
func (o *BaseOrder) HasInstance() bool {
	return o.InstanceID != ""
}

// IsProviderLocal reports whether the order is fulfilled by the given provider.
func (o *BaseOrder) IsProviderLocal(localProviderID string) bool {
	return o.Provider == localProviderID
}

func (o *BaseOrder) String() string {
	return fmt.Sprintf("%s{id=%s, provider=%s, cloud=%s, state=%s}", o.Type, o.ID, o.Provider, o.CloudName, o.State)
}

func (o *BaseOrder) clone() BaseOrder {
	c := *o
	if o.SystemUser != nil {
		user := *o.SystemUser
		user.Attributes = maps.Clone(o.SystemUser.Attributes)
		c.SystemUser = &user
	}
	return c
}

func initBase(base BaseOrder, kind ResourceType) BaseOrder {
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.State == "" {
		base.State = OrderStateOpen
	}
	base.Type = kind
	return base
}

type ComputeOrder struct {
	BaseOrder
	Name         string             `json:"name"`
	VCPU         int                `json:"vCPU"`
	Memory       int                `json:"memory"`
	Disk         int                `json:"disk"`
	ImageID      string             `json:"imageId"`
	PublicKey    string             `json:"publicKey,omitempty"`
	NetworkIDs   []string           `json:"networkIds,omitempty"`
	Requirements map[string]string  `json:"requirements,omitempty"`
	Allocation   *ComputeAllocation `json:"actualAllocation,omitempty"`
}

// ComputeAllocation is what the cloud actually granted, which can exceed the
// request because flavors are discrete.
type ComputeAllocation struct {
	VCPU   int `json:"vCPU"`
	Memory int `json:"memory"`
	Disk   int `json:"disk"`
}

func NewComputeOrder(base BaseOrder) *ComputeOrder {
	return &ComputeOrder{BaseOrder: initBase(base, ResourceTypeCompute)}
}

func (o *ComputeOrder) Clone() Order {
	c := *o
	c.BaseOrder = o.BaseOrder.clone()
	c.NetworkIDs = slices.Clone(o.NetworkIDs)
	c.Requirements = maps.Clone(o.Requirements)
	if o.Allocation != nil {
		a := *o.Allocation
		c.Allocation = &a
	}
	return &c
}

func (*ComputeOrder) Kind() ResourceType { return ResourceTypeCompute }
func (*ComputeOrder) isOrder()           {}

type NetworkAllocationMode string

const (
	NetworkAllocationDynamic NetworkAllocationMode = "dynamic"
	NetworkAllocationStatic  NetworkAllocationMode = "static"
)

type NetworkOrder struct {
	BaseOrder
	Name           string                `json:"name"`
	CIDR           string                `json:"cidr"`
	Gateway        string                `json:"gateway,omitempty"`
	AllocationMode NetworkAllocationMode `json:"allocationMode"`
}

func NewNetworkOrder(base BaseOrder) *NetworkOrder {
	return &NetworkOrder{BaseOrder: initBase(base, ResourceTypeNetwork), AllocationMode: NetworkAllocationDynamic}
}

func (o *NetworkOrder) Clone() Order {
	c := *o
	c.BaseOrder = o.BaseOrder.clone()
	return &c
}

func (*NetworkOrder) Kind() ResourceType { return ResourceTypeNetwork }
func (*NetworkOrder) isOrder()           {}

type VolumeOrder struct {
	BaseOrder
	Name       string `json:"name"`
	VolumeSize int    `json:"volumeSize"`
}

func NewVolumeOrder(base BaseOrder) *VolumeOrder {
	return &VolumeOrder{BaseOrder: initBase(base, ResourceTypeVolume)}
}

func (o *VolumeOrder) Clone() Order {
	c := *o
	c.BaseOrder = o.BaseOrder.clone()
	return &c
}

func (*VolumeOrder) Kind() ResourceType { return ResourceTypeVolume }
func (*VolumeOrder) isOrder()           {}

type AttachmentOrder struct {
	BaseOrder
	ComputeOrderID string `json:"computeOrderId"`
	VolumeOrderID  string `json:"volumeOrderId"`
	// Cloud side ids of the compute and the volume, resolved by the caller.
	ComputeID string `json:"computeId,omitempty"`
	VolumeID  string `json:"volumeId,omitempty"`
	Device    string `json:"device,omitempty"`
}

func NewAttachmentOrder(base BaseOrder) *AttachmentOrder {
	return &AttachmentOrder{BaseOrder: initBase(base, ResourceTypeAttachment)}
}

func (o *AttachmentOrder) Clone() Order {
	c := *o
	c.BaseOrder = o.BaseOrder.clone()
	return &c
}

func (*AttachmentOrder) Kind() ResourceType { return ResourceTypeAttachment }
func (*AttachmentOrder) isOrder()           {}

type PublicIPOrder struct {
	BaseOrder
	ComputeOrderID string `json:"computeOrderId"`
	ComputeID      string `json:"computeId,omitempty"`
}

func NewPublicIPOrder(base BaseOrder) *PublicIPOrder {
	return &PublicIPOrder{BaseOrder: initBase(base, ResourceTypePublicIP)}
}

func (o *PublicIPOrder) Clone() Order {
	c := *o
	c.BaseOrder = o.BaseOrder.clone()
	return &c
}

func (*PublicIPOrder) Kind() ResourceType { return ResourceTypePublicIP }
func (*PublicIPOrder) isOrder()           {}

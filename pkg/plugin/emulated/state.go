// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emulated

import (
	"strings"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Cloud states the emulated cloud reports. They follow the vocabulary of the
// OpenStack APIs so state mapping code can be exercised realistically.
const (
	StateActive    = "active"
	StateAvailable = "available"
	StateBuild     = "build"
	StateCreating  = "creating"
	StateError     = "error"
	StateDown      = "down"
	StateDeleting  = "deleting"
	StateAttaching = "attaching"
	StateInUse     = "in-use"
	StatePaused    = "paused"
	StateSuspended = "suspended"
	StateShelved   = "shelved"
	StateShutoff   = "shutoff"
	StateReboot    = "reboot"
	StateResize    = "resize"
	StateMigrating = "migrating"
)

var stateTables = map[model.ResourceType]map[string]model.InstanceState{
	model.ResourceTypeCompute: {
		StateActive:    model.InstanceStateReady,
		StateBuild:     model.InstanceStateCreating,
		StateError:     model.InstanceStateFailed,
		StatePaused:    model.InstanceStatePaused,
		StateSuspended: model.InstanceStateHibernated,
		StateShelved:   model.InstanceStateStopped,
		StateShutoff:   model.InstanceStateBusy,
		StateReboot:    model.InstanceStateBusy,
		StateResize:    model.InstanceStateBusy,
		StateMigrating: model.InstanceStateBusy,
		StateDeleting:  model.InstanceStateBusy,
	},
	model.ResourceTypeNetwork: {
		StateBuild:  model.InstanceStateCreating,
		StateActive: model.InstanceStateReady,
		StateError:  model.InstanceStateFailed,
		StateDown:   model.InstanceStateBusy,
	},
	model.ResourceTypeVolume: {
		StateCreating:  model.InstanceStateCreating,
		StateAvailable: model.InstanceStateReady,
		StateInUse:     model.InstanceStateReady,
		StateAttaching: model.InstanceStateBusy,
		StateDeleting:  model.InstanceStateBusy,
		StateError:     model.InstanceStateFailed,
	},
	model.ResourceTypeAttachment: {
		StateAttaching: model.InstanceStateCreating,
		StateInUse:     model.InstanceStateReady,
		StateError:     model.InstanceStateFailed,
	},
	model.ResourceTypePublicIP: {
		StateBuild:  model.InstanceStateCreating,
		StateActive: model.InstanceStateReady,
		StateDown:   model.InstanceStateBusy,
		StateError:  model.InstanceStateFailed,
	},
}

// MapState normalizes a cloud state. Anything the table does not know is
// INCONSISTENT.
func MapState(resourceType model.ResourceType, cloudState string) model.InstanceState {
	if table, ok := stateTables[resourceType]; ok {
		if s, ok := table[strings.ToLower(cloudState)]; ok {
			return s
		}
	}
	return model.InstanceStateInconsistent
}

// readyState is the state a freshly provisioned resource settles in.
func readyState(resourceType model.ResourceType) string {
	switch resourceType {
	case model.ResourceTypeVolume:
		return StateAvailable
	case model.ResourceTypeAttachment:
		return StateInUse
	default:
		return StateActive
	}
}

// provisioningState is what a resource reports while it is being created.
func provisioningState(resourceType model.ResourceType) string {
	switch resourceType {
	case model.ResourceTypeVolume:
		return StateCreating
	case model.ResourceTypeAttachment:
		return StateAttaching
	default:
		return StateBuild
	}
}

type classifier struct {
	resourceType model.ResourceType
}

func (c classifier) IsReady(cloudState string) bool {
	return MapState(c.resourceType, cloudState) == model.InstanceStateReady
}

func (c classifier) HasFailed(cloudState string) bool {
	return MapState(c.resourceType, cloudState) == model.InstanceStateFailed
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "fmt"

type ResourceAllocation struct {
	Instances int `json:"instances"`
	VCPU      int `json:"vCPU"`
	RAM       int `json:"ram"`
	Disk      int `json:"disk"`
	Networks  int `json:"networks"`
	PublicIPs int `json:"publicIps"`
	Volumes   int `json:"volumes"`
}

func (a ResourceAllocation) Sub(o ResourceAllocation) ResourceAllocation {
	return ResourceAllocation{
		Instances: a.Instances - o.Instances,
		VCPU:      a.VCPU - o.VCPU,
		RAM:       a.RAM - o.RAM,
		Disk:      a.Disk - o.Disk,
		Networks:  a.Networks - o.Networks,
		PublicIPs: a.PublicIPs - o.PublicIPs,
		Volumes:   a.Volumes - o.Volumes,
	}
}

// Fits reports whether every dimension of o is within a.
func (a ResourceAllocation) Fits(o ResourceAllocation) bool {
	return o.Instances <= a.Instances &&
		o.VCPU <= a.VCPU &&
		o.RAM <= a.RAM &&
		o.Disk <= a.Disk &&
		o.Networks <= a.Networks &&
		o.PublicIPs <= a.PublicIPs &&
		o.Volumes <= a.Volumes
}

type Quota struct {
	Total     ResourceAllocation `json:"totalQuota"`
	Used      ResourceAllocation `json:"usedQuota"`
	Available ResourceAllocation `json:"availableQuota"`
}

func NewQuota(total, used ResourceAllocation) *Quota {
	return &Quota{Total: total, Used: used, Available: total.Sub(used)}
}

func (q *Quota) String() string {
	return fmt.Sprintf("Quota{total=%+v, used=%+v, available=%+v}", q.Total, q.Used, q.Available)
}

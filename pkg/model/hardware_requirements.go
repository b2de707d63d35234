// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"cmp"
	"fmt"
	"slices"
)

// HardwareRequirements describes a cloud flavor. Identity is the flavor id
// alone: two values with the same FlavorID are the same flavor whatever their
// sizes say.
type HardwareRequirements struct {
	Name     string `json:"name"`
	FlavorID string `json:"flavorId"`
	CPU      int    `json:"cpu"`
	Memory   int    `json:"memory"`
	Disk     int    `json:"disk"`
}

func (h HardwareRequirements) Equal(o HardwareRequirements) bool {
	return h.FlavorID == o.FlavorID
}

// Key is the map key for a flavor.
func (h HardwareRequirements) Key() string {
	return h.FlavorID
}

func (h HardwareRequirements) String() string {
	return fmt.Sprintf("%s(%s){cpu=%d, memory=%d, disk=%d}", h.Name, h.FlavorID, h.CPU, h.Memory, h.Disk)
}

// Satisfies reports whether h is at least as large as want on every axis.
func (h HardwareRequirements) Satisfies(want HardwareRequirements) bool {
	return h.CPU >= want.CPU && h.Memory >= want.Memory && h.Disk >= want.Disk
}

// relevance scores h against o. The ratios use integer division, so any ratio
// below one collapses to zero.
func relevance(h, o HardwareRequirements) int {
	return ratio(h.CPU, o.CPU) + ratio(h.Memory, o.Memory)
}

func ratio(a, b int) int {
	if b == 0 {
		return 0
	}
	return a / b
}

// Compare orders flavors by relevance, then by disk ascending.
func (h HardwareRequirements) Compare(o HardwareRequirements) int {
	hr, or := relevance(h, o), relevance(o, h)
	if hr != or {
		return cmp.Compare(hr, or)
	}
	return cmp.Compare(h.Disk, o.Disk)
}

// FlavorSet holds one entry per flavor id.
type FlavorSet struct {
	flavors map[string]HardwareRequirements
}

func NewFlavorSet(flavors ...HardwareRequirements) *FlavorSet {
	s := &FlavorSet{flavors: make(map[string]HardwareRequirements, len(flavors))}
	for _, f := range flavors {
		s.Add(f)
	}
	return s
}

// Add inserts f, replacing any flavor with the same id. It reports whether the
// id was new.
func (s *FlavorSet) Add(f HardwareRequirements) bool {
	_, exists := s.flavors[f.Key()]
	s.flavors[f.Key()] = f
	return !exists
}

func (s *FlavorSet) Contains(f HardwareRequirements) bool {
	_, ok := s.flavors[f.Key()]
	return ok
}

func (s *FlavorSet) Len() int {
	return len(s.flavors)
}

// Sorted returns the flavors in Compare order. Flavor id breaks the remaining
// ties so the result is deterministic.
func (s *FlavorSet) Sorted() []HardwareRequirements {
	out := make([]HardwareRequirements, 0, len(s.flavors))
	for _, f := range s.flavors {
		out = append(out, f)
	}
	slices.SortStableFunc(out, func(a, b HardwareRequirements) int {
		if c := a.Compare(b); c != 0 {
			return c
		}
		return cmp.Compare(a.FlavorID, b.FlavorID)
	})
	return out
}

// Smallest returns the first flavor, in Compare order, that satisfies want.
func (s *FlavorSet) Smallest(want HardwareRequirements) (HardwareRequirements, bool) {
	for _, f := range s.Sorted() {
		if f.Satisfies(want) {
			return f, true
		}
	}
	return HardwareRequirements{}, false
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plugin

import (
	"errors"
	"fmt"
)

// Set bundles every plugin a local cloud needs.
type Set struct {
	Compute      ComputePlugin
	Network      NetworkPlugin
	Volume       VolumePlugin
	Attachment   AttachmentPlugin
	PublicIP     PublicIPPlugin
	Image        ImagePlugin
	Quota        QuotaPlugin
	SecurityRule SecurityRulePlugin
	Mapper       MapperPlugin
}

// Validate reports every missing plugin at once.
func (s *Set) Validate() error {
	var errs []error
	check := func(name string, missing bool) {
		if missing {
			errs = append(errs, fmt.Errorf("missing %s plugin", name))
		}
	}
	check("compute", s.Compute == nil)
	check("network", s.Network == nil)
	check("volume", s.Volume == nil)
	check("attachment", s.Attachment == nil)
	check("public ip", s.PublicIP == nil)
	check("image", s.Image == nil)
	check("quota", s.Quota == nil)
	check("security rule", s.SecurityRule == nil)
	check("mapper", s.Mapper == nil)
	return errors.Join(errs...)
}

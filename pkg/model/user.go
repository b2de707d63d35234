// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "fmt"

// SystemUser is the federation level identity of a requester.
type SystemUser struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	IdentityProviderID string            `json:"identityProviderId"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

func (u *SystemUser) String() string {
	return fmt.Sprintf("%s@%s", u.ID, u.IdentityProviderID)
}

// CloudUser is the credential a plugin uses to talk to its cloud. Produced by a
// MapperPlugin, opaque to the connectors.
type CloudUser struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Token      string            `json:"-"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

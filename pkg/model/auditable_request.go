// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "time"

// AuditableRequest records one attempted operation. It is immutable: fields
// are only reachable through getters.
type AuditableRequest struct {
	timestamp          time.Time
	operation          Operation
	resourceType       ResourceType
	userID             string
	identityProviderID string
	response           *string
}

// NewAuditableRequest builds a record. A nil user yields empty requester
// fields, a nil response means the outcome is unknown.
func NewAuditableRequest(timestamp time.Time, operation Operation, resourceType ResourceType, user *SystemUser, response *string) AuditableRequest {
	r := AuditableRequest{
		timestamp:    timestamp,
		operation:    operation,
		resourceType: resourceType,
	}
	if user != nil {
		r.userID = user.ID
		r.identityProviderID = user.IdentityProviderID
	}
	if response != nil {
		s := *response
		r.response = &s
	}
	return r
}

// RestoreAuditableRequest rebuilds a stored record.
func RestoreAuditableRequest(timestamp time.Time, operation Operation, resourceType ResourceType, userID, identityProviderID string, response *string) AuditableRequest {
	return AuditableRequest{
		timestamp:          timestamp,
		operation:          operation,
		resourceType:       resourceType,
		userID:             userID,
		identityProviderID: identityProviderID,
		response:           response,
	}
}

func (r AuditableRequest) Timestamp() time.Time       { return r.timestamp }
func (r AuditableRequest) Operation() Operation       { return r.operation }
func (r AuditableRequest) ResourceType() ResourceType { return r.resourceType }
func (r AuditableRequest) UserID() string             { return r.userID }
func (r AuditableRequest) IdentityProviderID() string { return r.identityProviderID }

// Response returns the outcome and whether one was recorded.
func (r AuditableRequest) Response() (string, bool) {
	if r.response == nil {
		return "", false
	}
	return *r.response, true
}

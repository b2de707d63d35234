// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"time"

	pkgmodel "github.com/platform-engineering-labs/skyfed/pkg/model"
)

type Health struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	ProviderID string `json:"providerId"`
	Hostname   string `json:"hostname,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Uptime     string `json:"uptime"`
}

type CloudsResponse struct {
	ProviderID   string   `json:"providerId"`
	DefaultCloud string   `json:"defaultCloud"`
	Clouds       []string `json:"clouds"`
	Peers        []string `json:"peers"`
}

type ImagesResponse struct {
	ProviderID string                  `json:"providerId"`
	CloudName  string                  `json:"cloudName"`
	Images     []pkgmodel.ImageSummary `json:"images"`
}

type QuotaResponse struct {
	ProviderID string          `json:"providerId"`
	CloudName  string          `json:"cloudName"`
	Quota      *pkgmodel.Quota `json:"quota"`
}

type AuditRecord struct {
	Timestamp          time.Time             `json:"timestamp" yaml:"timestamp"`
	Operation          pkgmodel.Operation    `json:"operation" yaml:"operation"`
	ResourceType       pkgmodel.ResourceType `json:"resourceType" yaml:"resourceType"`
	UserID             string                `json:"userId,omitempty" yaml:"userId,omitempty"`
	IdentityProviderID string                `json:"identityProviderId,omitempty" yaml:"identityProviderId,omitempty"`
	Response           *string               `json:"response,omitempty" yaml:"response,omitempty"`
}

func NewAuditRecord(r pkgmodel.AuditableRequest) AuditRecord {
	rec := AuditRecord{
		Timestamp:          r.Timestamp(),
		Operation:          r.Operation(),
		ResourceType:       r.ResourceType(),
		UserID:             r.UserID(),
		IdentityProviderID: r.IdentityProviderID(),
	}
	if response, ok := r.Response(); ok {
		rec.Response = &response
	}
	return rec
}

type AuditResponse struct {
	Enabled bool          `json:"enabled"`
	Records []AuditRecord `json:"records"`
}

type AuditSettings struct {
	Enabled bool `json:"enabled"`
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package cloudconnector reaches a cloud through the same operations whether
// it is served by this provider or by a federation peer.
package cloudconnector

import (
	"context"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// CloudConnector is implemented by LocalCloudConnector and
// RemoteCloudConnector. The remote connector only returns
// *model.FederationError values. The local connector passes errors a plugin
// did not classify through unchanged, so their audit outcome is their type.
type CloudConnector interface {
	RequestInstance(ctx context.Context, order model.Order) (string, error)
	DeleteInstance(ctx context.Context, order model.Order) error
	GetInstance(ctx context.Context, order model.Order) (model.OrderInstance, error)
	GetUserQuota(ctx context.Context, user *model.SystemUser) (*model.Quota, error)
	GetAllImages(ctx context.Context, user *model.SystemUser) ([]model.ImageSummary, error)
	GetImage(ctx context.Context, imageID string, user *model.SystemUser) (*model.ImageInstance, error)
	GetAllSecurityRules(ctx context.Context, order model.Order, user *model.SystemUser) ([]model.SecurityRuleInstance, error)
	RequestSecurityRule(ctx context.Context, order model.Order, rule model.SecurityRule, user *model.SystemUser) (string, error)
	DeleteSecurityRule(ctx context.Context, ruleID string, user *model.SystemUser) error
}

var (
	_ CloudConnector = (*LocalCloudConnector)(nil)
	_ CloudConnector = (*RemoteCloudConnector)(nil)
)

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plugin

import (
	"context"

	"github.com/masterminds/semver"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

type Plugin interface {
	Name() string
	Version() *semver.Version
}

// OrderPlugin fulfils one order variant against one cloud. IsReady and
// HasFailed classify the cloud native state string the plugin reported.
type OrderPlugin[O model.Order, I model.OrderInstance] interface {
	RequestInstance(ctx context.Context, order O, user *model.CloudUser) (string, error)
	GetInstance(ctx context.Context, order O, user *model.CloudUser) (I, error)
	DeleteInstance(ctx context.Context, order O, user *model.CloudUser) error
	IsReady(cloudState string) bool
	HasFailed(cloudState string) bool
}

type ComputePlugin interface {
	OrderPlugin[*model.ComputeOrder, *model.ComputeInstance]
}

type NetworkPlugin interface {
	OrderPlugin[*model.NetworkOrder, *model.NetworkInstance]
}

type VolumePlugin interface {
	OrderPlugin[*model.VolumeOrder, *model.VolumeInstance]
}

type AttachmentPlugin interface {
	OrderPlugin[*model.AttachmentOrder, *model.AttachmentInstance]
}

type PublicIPPlugin interface {
	OrderPlugin[*model.PublicIPOrder, *model.PublicIPInstance]
}

type ImagePlugin interface {
	GetAllImages(ctx context.Context, user *model.CloudUser) ([]model.ImageSummary, error)
	GetImage(ctx context.Context, imageID string, user *model.CloudUser) (*model.ImageInstance, error)
}

type QuotaPlugin interface {
	GetUserQuota(ctx context.Context, user *model.CloudUser) (*model.Quota, error)
}

// SecurityRulePlugin manages rules attached to a network or public ip order.
type SecurityRulePlugin interface {
	GetSecurityRules(ctx context.Context, order model.Order, user *model.CloudUser) ([]model.SecurityRuleInstance, error)
	RequestSecurityRule(ctx context.Context, rule model.SecurityRule, order model.Order, user *model.CloudUser) (string, error)
	DeleteSecurityRule(ctx context.Context, ruleID string, user *model.CloudUser) error
}

// MapperPlugin turns a federation identity into a cloud credential. A nil
// user or an identity the mapper cannot serve is an Unauthenticated error.
type MapperPlugin interface {
	Map(ctx context.Context, user *model.SystemUser) (*model.CloudUser, error)
}

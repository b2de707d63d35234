// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package datastore persists the audit trail of the local cloud connectors.
package datastore

import (
	"context"
	"fmt"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

const (
	AuditTable             = "auditable_requests"
	DefaultAuditQueryLimit = 50
	MaxAuditQueryLimit     = 1000
)

// AuditStore is where every local connector operation leaves its record.
type AuditStore interface {
	// AuditRequest appends one record.
	AuditRequest(ctx context.Context, request model.AuditableRequest) error
	// ListAuditableRequests returns the most recent records first.
	ListAuditableRequests(ctx context.Context, limit int) ([]model.AuditableRequest, error)
	Close() error
}

// New opens the store selected by cfg and brings its schema up to date.
func New(ctx context.Context, cfg *model.DatastoreConfig, agentID string) (AuditStore, error) {
	switch cfg.DatastoreType {
	case model.PostgresDatastore:
		d, err := NewDatastorePostgres(ctx, cfg, agentID)
		if err != nil {
			return nil, err
		}
		return d, nil
	case model.SqliteDatastore, "":
		d, err := NewDatastoreSQLite(ctx, cfg, agentID)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported datastore type %q", cfg.DatastoreType)
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultAuditQueryLimit
	case limit > MaxAuditQueryLimit:
		return MaxAuditQueryLimit
	default:
		return limit
	}
}

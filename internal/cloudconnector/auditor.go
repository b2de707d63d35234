// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cloudconnector

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// AuditWriter persists audit records. The datastore implements it.
type AuditWriter interface {
	AuditRequest(ctx context.Context, request model.AuditableRequest) error
}

// Auditor is shared by every LocalCloudConnector of the process, so toggling it
// switches auditing for all of them at once. A call that races with a toggle
// may or may not be audited.
type Auditor struct {
	store   AuditWriter
	enabled atomic.Bool
	now     func() time.Time
}

// NewAuditor starts enabled. A nil store drops every record.
func NewAuditor(store AuditWriter) *Auditor {
	a := &Auditor{store: store, now: time.Now}
	a.enabled.Store(true)
	return a
}

func (a *Auditor) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

func (a *Auditor) Enabled() bool {
	return a.enabled.Load()
}

// Audit writes one record. A failed write is logged and never replaces the
// outcome of the audited operation.
func (a *Auditor) Audit(ctx context.Context, op model.Operation, rt model.ResourceType, user *model.SystemUser, response *string) {
	if a == nil || a.store == nil || !a.Enabled() {
		return
	}

	request := model.NewAuditableRequest(a.now(), op, rt, user, response)
	if err := a.store.AuditRequest(context.WithoutCancel(ctx), request); err != nil {
		slog.Error("Failed to write audit record", "operation", op, "resourceType", rt, "error", err)
	}
}

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package cloudconnector

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/logging"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

const (
	localID  = "provider-local"
	remoteID = "provider-remote"
)

// captureLogs routes the default logger into a capture for the test.
func captureLogs(t *testing.T) *logging.TestLogCapture {
	t.Helper()
	capture := logging.NewTestLogCaptureQuiet()
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(capture, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return capture
}

var alice = &model.SystemUser{ID: "alice", Name: "Alice", IdentityProviderID: "idp-1"}

type fakeOrderPlugin[O model.Order, I model.OrderInstance] struct {
	calls       atomic.Int32
	id          string
	instance    I
	err         error
	readyState  string
	failedState string
}

func (p *fakeOrderPlugin[O, I]) RequestInstance(context.Context, O, *model.CloudUser) (string, error) {
	p.calls.Add(1)
	return p.id, p.err
}

func (p *fakeOrderPlugin[O, I]) GetInstance(context.Context, O, *model.CloudUser) (I, error) {
	p.calls.Add(1)
	return p.instance, p.err
}

func (p *fakeOrderPlugin[O, I]) DeleteInstance(context.Context, O, *model.CloudUser) error {
	p.calls.Add(1)
	return p.err
}

func (p *fakeOrderPlugin[O, I]) IsReady(s string) bool   { return s == p.readyState }
func (p *fakeOrderPlugin[O, I]) HasFailed(s string) bool { return s == p.failedState }

type fakeServices struct {
	calls atomic.Int32
	err   error
}

func (f *fakeServices) GetAllImages(context.Context, *model.CloudUser) ([]model.ImageSummary, error) {
	f.calls.Add(1)
	return []model.ImageSummary{{ID: "i1", Name: "ubuntu"}}, f.err
}

func (f *fakeServices) GetImage(_ context.Context, id string, _ *model.CloudUser) (*model.ImageInstance, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &model.ImageInstance{ID: id, Name: "ubuntu"}, nil
}

func (f *fakeServices) GetUserQuota(context.Context, *model.CloudUser) (*model.Quota, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return model.NewQuota(model.ResourceAllocation{Instances: 2}, model.ResourceAllocation{Instances: 1}), nil
}

func (f *fakeServices) GetSecurityRules(context.Context, model.Order, *model.CloudUser) ([]model.SecurityRuleInstance, error) {
	f.calls.Add(1)
	return []model.SecurityRuleInstance{}, f.err
}

func (f *fakeServices) RequestSecurityRule(context.Context, model.SecurityRule, model.Order, *model.CloudUser) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "rule-1", nil
}

func (f *fakeServices) DeleteSecurityRule(context.Context, string, *model.CloudUser) error {
	f.calls.Add(1)
	return f.err
}

type fakeMapper struct {
	err error
}

func (m *fakeMapper) Map(_ context.Context, user *model.SystemUser) (*model.CloudUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError("no user")
	}
	return &model.CloudUser{ID: user.ID, Token: "t"}, nil
}

type fakeCloud struct {
	compute    *fakeOrderPlugin[*model.ComputeOrder, *model.ComputeInstance]
	network    *fakeOrderPlugin[*model.NetworkOrder, *model.NetworkInstance]
	volume     *fakeOrderPlugin[*model.VolumeOrder, *model.VolumeInstance]
	attachment *fakeOrderPlugin[*model.AttachmentOrder, *model.AttachmentInstance]
	publicIP   *fakeOrderPlugin[*model.PublicIPOrder, *model.PublicIPInstance]
	services   *fakeServices
	mapper     *fakeMapper
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		compute: &fakeOrderPlugin[*model.ComputeOrder, *model.ComputeInstance]{
			id:          "vm-1",
			instance:    &model.ComputeInstance{BaseInstance: model.BaseInstance{ID: "vm-1", CloudState: "ACTIVE"}},
			readyState:  "ACTIVE",
			failedState: "ERROR",
		},
		network:    &fakeOrderPlugin[*model.NetworkOrder, *model.NetworkInstance]{id: "net-1"},
		volume:     &fakeOrderPlugin[*model.VolumeOrder, *model.VolumeInstance]{id: "vol-1"},
		attachment: &fakeOrderPlugin[*model.AttachmentOrder, *model.AttachmentInstance]{id: "att-1"},
		publicIP:   &fakeOrderPlugin[*model.PublicIPOrder, *model.PublicIPInstance]{id: "ip-1"},
		services:   &fakeServices{},
		mapper:     &fakeMapper{},
	}
}

func (c *fakeCloud) set() *plugin.Set {
	return &plugin.Set{
		Compute:      c.compute,
		Network:      c.network,
		Volume:       c.volume,
		Attachment:   c.attachment,
		PublicIP:     c.publicIP,
		Image:        c.services,
		Quota:        c.services,
		SecurityRule: c.services,
		Mapper:       c.mapper,
	}
}

func (c *fakeCloud) pluginCalls() int32 {
	return c.compute.calls.Load() + c.network.calls.Load() + c.volume.calls.Load() +
		c.attachment.calls.Load() + c.publicIP.calls.Load() + c.services.calls.Load()
}

type memoryAuditStore struct {
	mu      sync.Mutex
	records []model.AuditableRequest
	err     error
}

func (s *memoryAuditStore) AuditRequest(_ context.Context, r model.AuditableRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

func (s *memoryAuditStore) all() []model.AuditableRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditableRequest(nil), s.records...)
}

type instantiatorFunc func(cfg model.CloudConfig) (*plugin.Set, error)

func (f instantiatorFunc) Instantiate(cfg model.CloudConfig) (*plugin.Set, error) {
	return f(cfg)
}

type senderFunc func(ctx context.Context, p *intercomponent.Packet) (*intercomponent.Packet, error)

func (f senderFunc) SendPacket(ctx context.Context, p *intercomponent.Packet) (*intercomponent.Packet, error) {
	return f(ctx, p)
}

func newLocal(t interface{ Helper() }) (*LocalCloudConnector, *fakeCloud, *memoryAuditStore) {
	t.Helper()
	cloud := newFakeCloud()
	store := &memoryAuditStore{}
	return NewLocalCloudConnector("cloudA", cloud.set(), NewAuditor(store), nil), cloud, store
}

func computeOrder() *model.ComputeOrder {
	o := model.NewComputeOrder(model.BaseOrder{
		Provider:   localID,
		Requester:  localID,
		CloudName:  "cloudA",
		SystemUser: alice,
	})
	o.VCPU, o.Memory, o.Disk = 1, 1024, 10
	return o
}

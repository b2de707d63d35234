// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package facade

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/logging"
	"github.com/platform-engineering-labs/skyfed/internal/orders"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/emulated"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/mapper"
)

const (
	providerID  = "provider-b"
	requesterID = "provider-a"
)

var bob = &model.SystemUser{ID: "bob", Name: "Bob", IdentityProviderID: "idp", Attributes: map[string]string{"token": "secret"}}

type fixture struct {
	facade *RemoteFacade
	holder *orders.Holder
	driver *emulated.Driver
}

func newFixture(t *testing.T, params map[string]string) *fixture {
	t.Helper()

	driver := emulated.NewDriver()
	registry := plugin.NewRegistry()
	require.NoError(t, registry.RegisterDriver(driver))
	require.NoError(t, mapper.Register(registry))

	cfg := &model.Config{
		Provider: model.ProviderConfig{ID: providerID, DefaultCloud: "east"},
		Clouds: []model.CloudConfig{{
			Name:   "east",
			Driver: emulated.DriverName,
			Mapper: model.MapperConfig{Type: mapper.OneToOneName},
			Params: params,
		}},
	}
	factory := cloudconnector.NewFactory(cfg, registry, cloudconnector.NewAuditor(nil), nil)
	holder := orders.NewHolder()
	return &fixture{facade: NewRemoteFacade(factory, holder), holder: holder, driver: driver}
}

// serve exposes the facade the way the agent API does.
func (f *fixture) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p intercomponent.Packet
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.facade.HandlePacket(r.Context(), &p))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fixture) remote(t *testing.T) *cloudconnector.RemoteCloudConnector {
	t.Helper()
	sender := intercomponent.NewHTTPPacketSender(requesterID, []model.PeerConfig{{ID: providerID, URL: f.serve(t).URL}}, nil)
	t.Cleanup(func() { _ = sender.Close() })
	return cloudconnector.NewRemoteCloudConnector(providerID, "east", sender)
}

func newRemoteCompute() *model.ComputeOrder {
	o := model.NewComputeOrder(model.BaseOrder{
		Provider:   providerID,
		Requester:  requesterID,
		CloudName:  "east",
		SystemUser: bob,
	})
	o.VCPU, o.Memory, o.Disk = 1, 512, 5
	o.ImageID = "img-debian-12"
	return o
}

func send(t *testing.T, f *fixture, packetType intercomponent.PacketType, payload any) *intercomponent.Packet {
	t.Helper()
	p, err := intercomponent.NewPacket(packetType, providerID, "east", payload)
	require.NoError(t, err)
	p.From = requesterID
	return f.facade.HandlePacket(context.Background(), p)
}

func createOrder(t *testing.T, f *fixture, order model.Order) *intercomponent.Packet {
	t.Helper()
	env, err := model.OrderEnvelope(order)
	require.NoError(t, err)
	return send(t, f, intercomponent.PacketCreateOrder, intercomponent.OrderPayload{Order: env})
}

func ref(order model.Order, user *model.SystemUser) intercomponent.OrderRefPayload {
	return intercomponent.OrderRefPayload{OrderID: order.Base().ID, ResourceType: order.Base().Type, User: user}
}

func TestRemoteFacade_OrderLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t, nil)
	c := f.remote(t)
	ctx := context.Background()
	order := newRemoteCompute()

	id, err := c.RequestInstance(ctx, order)
	require.NoError(t, err)
	assert.Empty(t, id)

	held, err := f.holder.Get(order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, held.Base().InstanceID)
	assert.Equal(t, model.OrderStateSpawning, held.Base().State)

	instance, err := c.GetInstance(ctx, order)
	require.NoError(t, err)
	assert.True(t, instance.Instance().Ready)
	assert.Equal(t, order.ID, instance.Instance().ID)
	assert.Equal(t, providerID, instance.Instance().Provider)

	remoteCopy, err := c.GetRemoteOrder(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateFulfilled, remoteCopy.Base().State)
	assert.Equal(t, "emu.tiny", instance.(*model.ComputeInstance).FlavorID)

	quota, err := c.GetUserQuota(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, quota.Used.Instances)

	images, err := c.GetAllImages(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	image, err := c.GetImage(ctx, "img-debian-12", bob)
	require.NoError(t, err)
	assert.Equal(t, "debian-12", image.Name)

	require.NoError(t, c.DeleteInstance(ctx, order))
	assert.Zero(t, f.holder.Len())

	_, err = c.GetInstance(ctx, order)
	assert.ErrorIs(t, err, model.ErrInstanceNotFound)
}

func TestRemoteFacade_SecurityRulesOverHTTP(t *testing.T) {
	f := newFixture(t, nil)
	c := f.remote(t)
	ctx := context.Background()

	network := model.NewNetworkOrder(model.BaseOrder{Provider: providerID, Requester: requesterID, CloudName: "east", SystemUser: bob})
	network.CIDR = "10.10.0.0/24"
	_, err := c.RequestInstance(ctx, network)
	require.NoError(t, err)

	rule := model.SecurityRule{Direction: model.DirectionIngress, PortFrom: 80, PortTo: 80, CIDR: "0.0.0.0/0", EtherType: model.EtherTypeIPv4, Protocol: model.ProtocolTCP}
	ruleID, err := c.RequestSecurityRule(ctx, network, rule, bob)
	require.NoError(t, err)
	assert.NotEmpty(t, ruleID)

	rules, err := c.GetAllSecurityRules(ctx, network, bob)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, ruleID, rules[0].ID)

	require.NoError(t, c.DeleteSecurityRule(ctx, ruleID, bob))
	rules, err = c.GetAllSecurityRules(ctx, network, bob)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRemoteFacade_CreateFailureIsRecorded(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()
	order.ImageID = "img-missing"

	reply := createOrder(t, f, order)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)

	held, err := f.holder.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateFailedOnRequest, held.Base().State)
}

func TestRemoteFacade_DuplicateCreate(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()

	require.Nil(t, createOrder(t, f, order).Condition)
	reply := createOrder(t, f, order)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)
}

func TestRemoteFacade_ConsistencyChecks(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()
	require.Nil(t, createOrder(t, f, order).Condition)

	stranger := &model.SystemUser{ID: "eve", IdentityProviderID: "idp"}
	tests := []struct {
		name    string
		payload intercomponent.OrderRefPayload
		from    string
		kind    model.ErrorKind
	}{
		{"wrongRequester", ref(order, bob), "provider-c", model.KindInvalidParameter},
		{"wrongOwner", ref(order, stranger), requesterID, model.KindUnauthorized},
		{"noUser", ref(order, nil), requesterID, model.KindUnauthenticated},
		{"unknownOrder", intercomponent.OrderRefPayload{OrderID: "nope", ResourceType: model.ResourceTypeCompute, User: bob}, requesterID, model.KindInstanceNotFound},
		{"wrongType", intercomponent.OrderRefPayload{OrderID: order.ID, ResourceType: model.ResourceTypeVolume, User: bob}, requesterID, model.KindMismatchingResourceType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := intercomponent.NewPacket(intercomponent.PacketGetInstance, providerID, "east", tt.payload)
			require.NoError(t, err)
			p.From = tt.from

			reply := f.facade.HandlePacket(context.Background(), p)
			require.NotNil(t, reply.Condition)
			assert.Equal(t, tt.kind, reply.Condition.Kind)
			assert.Equal(t, p.ID, reply.ID)
			assert.Equal(t, tt.from, reply.To)
		})
	}
}

func TestRemoteFacade_OrderForAnotherProvider(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()
	order.Provider = "provider-c"

	reply := createOrder(t, f, order)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInstanceNotFound, reply.Condition.Kind)
	assert.Zero(t, f.holder.Len())
}

func TestRemoteFacade_PacketForAnotherProvider(t *testing.T) {
	f := newFixture(t, nil)
	p, err := intercomponent.NewPacket(intercomponent.PacketGetAllImages, "provider-c", "east", intercomponent.UserPayload{User: bob})
	require.NoError(t, err)
	p.From = requesterID

	reply := f.facade.HandlePacket(context.Background(), p)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)
}

func TestRemoteFacade_UnsupportedPacket(t *testing.T) {
	f := newFixture(t, nil)
	reply := send(t, f, intercomponent.PacketType("reboot"), nil)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)
}

func TestRemoteFacade_UnknownCloud(t *testing.T) {
	f := newFixture(t, nil)
	p, err := intercomponent.NewPacket(intercomponent.PacketGetUserQuota, providerID, "west", intercomponent.UserPayload{User: bob})
	require.NoError(t, err)
	p.From = requesterID

	reply := f.facade.HandlePacket(context.Background(), p)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)
}

func TestRemoteFacade_FailedInstanceMarksOrder(t *testing.T) {
	f := newFixture(t, map[string]string{"failOnCreate": "true"})
	order := newRemoteCompute()
	require.Nil(t, createOrder(t, f, order).Condition)

	reply := send(t, f, intercomponent.PacketGetInstance, ref(order, bob))
	require.Nil(t, reply.Condition)

	var env model.Envelope
	require.NoError(t, reply.Decode(&env))
	instance, err := env.Instance()
	require.NoError(t, err)
	assert.True(t, instance.Instance().Failed)

	held, err := f.holder.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateFailedAfterSuccessfulRequest, held.Base().State)
}

func TestRemoteFacade_EmptyListsAreNotNull(t *testing.T) {
	f := newFixture(t, nil)
	network := model.NewNetworkOrder(model.BaseOrder{Provider: providerID, Requester: requesterID, CloudName: "east", SystemUser: bob})
	network.CIDR = "10.0.0.0/16"
	require.Nil(t, createOrder(t, f, network).Condition)

	reply := send(t, f, intercomponent.PacketGetAllSecurityRule, intercomponent.SecurityRulePayload{OrderID: network.ID, User: bob})
	require.Nil(t, reply.Condition)
	assert.JSONEq(t, "[]", string(reply.Payload))
}

func TestRemoteFacade_ConcurrentReadsOfOneOrder(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()
	require.Nil(t, createOrder(t, f, order).Condition)

	var wg conc.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 20 {
				assert.Nil(t, send(t, f, intercomponent.PacketGetInstance, ref(order, bob)).Condition)
				assert.Nil(t, send(t, f, intercomponent.PacketGetOrder, ref(order, bob)).Condition)
			}
		})
	}
	wg.Wait()

	held, err := f.holder.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateFulfilled, held.Base().State)
	assert.NotEmpty(t, held.Base().InstanceID)
}

func TestRemoteFacade_HeldOrderKeepsAllocation(t *testing.T) {
	f := newFixture(t, nil)
	order := newRemoteCompute()
	require.Nil(t, createOrder(t, f, order).Condition)

	held, err := f.holder.Get(order.ID)
	require.NoError(t, err)
	compute, ok := held.(*model.ComputeOrder)
	require.True(t, ok)
	require.NotNil(t, compute.Allocation)
	assert.GreaterOrEqual(t, compute.Allocation.VCPU, order.VCPU)
}

func TestRemoteFacade_UpdateOfRemovedOrderWarns(t *testing.T) {
	capture := logging.NewTestLogCaptureQuiet()
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(capture, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	f := newFixture(t, nil)
	called := false
	f.facade.update("o-gone", func(model.Order) { called = true })

	assert.False(t, called)
	assert.True(t, capture.ContainsAll("level=WARN", "Held order vanished before update", "o-gone"), capture.GetEntries())
}

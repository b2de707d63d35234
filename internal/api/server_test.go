// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/skyfed"
	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/datastore"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent/facade"
	"github.com/platform-engineering-labs/skyfed/internal/orders"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/emulated"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/mapper"
)

var bob = &model.SystemUser{ID: "bob", Name: "Bob", IdentityProviderID: "idp", Attributes: map[string]string{"token": "secret"}}

type testProvider struct {
	id      string
	store   *datastore.DatastoreSQLite
	auditor *cloudconnector.Auditor
	http    *httptest.Server
}

// startProvider serves one provider with a single emulated cloud "east" and
// an in-memory audit store.
func startProvider(t *testing.T, id string, peers []model.PeerConfig, metrics http.Handler) *testProvider {
	t.Helper()
	ctx := context.Background()

	registry := plugin.NewRegistry()
	require.NoError(t, registry.RegisterDriver(emulated.NewDriver()))
	require.NoError(t, mapper.Register(registry))

	cfg := &model.Config{
		Provider: model.ProviderConfig{ID: id, DefaultCloud: "east"},
		Clouds: []model.CloudConfig{{
			Name:   "east",
			Driver: emulated.DriverName,
			Mapper: model.MapperConfig{Type: mapper.OneToOneName},
		}},
		Peers: peers,
	}

	store, err := datastore.NewDatastoreSQLite(ctx, &model.DatastoreConfig{
		DatastoreType: model.SqliteDatastore,
		Sqlite:        model.SqliteConfig{FilePath: ":memory:"},
	}, id)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sender := intercomponent.NewHTTPPacketSender(id, peers, nil)
	t.Cleanup(func() { _ = sender.Close() })

	auditor := cloudconnector.NewAuditor(store)
	factory := cloudconnector.NewFactory(cfg, registry, auditor, sender)

	peerIDs := make([]string, 0, len(peers))
	for _, p := range peers {
		peerIDs = append(peerIDs, p.ID)
	}

	srv := NewServer(ctx, Services{
		Facade:       facade.NewRemoteFacade(factory, orders.NewHolder()),
		Connectors:   factory,
		Audit:        store,
		Auditor:      auditor,
		DefaultCloud: cfg.Provider.DefaultCloud,
		Peers:        peerIDs,
	}, &model.ServerConfig{}, metrics)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testProvider{id: id, store: store, auditor: auditor, http: ts}
}

func (p *testProvider) client(t *testing.T, user *model.SystemUser) *Client {
	t.Helper()
	c := NewClientForURL(p.http.URL, nil).WithUser(user)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// federation starts provider-b, then provider-a peered with it.
func federation(t *testing.T) (a, b *testProvider) {
	t.Helper()
	b = startProvider(t, "provider-b", nil, nil)
	a = startProvider(t, "provider-a", []model.PeerConfig{{ID: b.id, URL: b.http.URL}}, nil)
	return a, b
}

func auditCount(t *testing.T, p *testProvider) int {
	t.Helper()
	records, err := p.store.ListAuditableRequests(context.Background(), 0)
	require.NoError(t, err)
	return len(records)
}

func TestHealth(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	health, err := p.client(t, nil).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, skyfed.Version, health.Version)
	assert.Equal(t, "provider-b", health.ProviderID)
}

func TestClouds(t *testing.T) {
	a, b := federation(t)

	clouds, err := b.client(t, nil).Clouds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "provider-b", clouds.ProviderID)
	assert.Equal(t, "east", clouds.DefaultCloud)
	assert.Equal(t, []string{"east"}, clouds.Clouds)
	assert.Empty(t, clouds.Peers)

	clouds, err = a.client(t, nil).Clouds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"provider-b"}, clouds.Peers)
}

func TestListImages_LocalCloud(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	images, err := p.client(t, bob).ListImages(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "provider-b", images.ProviderID)
	assert.Equal(t, "east", images.CloudName)
	require.Len(t, images.Images, 2)

	ids := []string{images.Images[0].ID, images.Images[1].ID}
	assert.ElementsMatch(t, []string{"img-ubuntu-24.04", "img-debian-12"}, ids)
}

func TestListImages_AnonymousIsUnauthenticated(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	_, err := p.client(t, nil).ListImages(context.Background(), "", "")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	resp, err := http.Get(p.http.URL + ImagesRoute)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListImages_UnknownCloud(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	_, err := p.client(t, bob).ListImages(context.Background(), "", "west")
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestGetImage(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)
	c := p.client(t, bob)

	image, err := c.GetImage(context.Background(), "", "", "img-debian-12")
	require.NoError(t, err)
	assert.Equal(t, "debian-12", image.Name)

	_, err = c.GetImage(context.Background(), "", "", "img-missing")
	assert.ErrorIs(t, err, model.ErrInstanceNotFound)
}

func TestGetQuota(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	quota, err := p.client(t, bob).GetQuota(context.Background(), "", "east")
	require.NoError(t, err)
	require.NotNil(t, quota.Quota)
	assert.Equal(t, 20, quota.Quota.Total.Instances)
	assert.Equal(t, quota.Quota.Total, quota.Quota.Available)
}

func TestFederatedImages_AuditedByServingProvider(t *testing.T) {
	a, b := federation(t)

	images, err := a.client(t, bob).ListImages(context.Background(), "provider-b", "")
	require.NoError(t, err)
	assert.Equal(t, "provider-b", images.ProviderID)
	assert.Len(t, images.Images, 2)

	assert.Equal(t, 0, auditCount(t, a), "the requesting provider keeps no record")

	records, err := b.store.ListAuditableRequests(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.OperationGetAll, records[0].Operation())
	assert.Equal(t, model.ResourceTypeImage, records[0].ResourceType())
	assert.Equal(t, "bob", records[0].UserID())
}

func TestFederatedImages_RemoteErrorKeepsItsKind(t *testing.T) {
	a, _ := federation(t)

	_, err := a.client(t, bob).GetImage(context.Background(), "provider-b", "east", "img-missing")
	assert.ErrorIs(t, err, model.ErrInstanceNotFound)

	_, err = a.client(t, nil).ListImages(context.Background(), "provider-b", "")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestFederatedImages_UnknownPeer(t *testing.T) {
	a, _ := federation(t)

	_, err := a.client(t, bob).ListImages(context.Background(), "provider-z", "")
	assert.ErrorIs(t, err, model.ErrUnavailableProvider)
}

func TestAudit_ListAndToggle(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)
	c := p.client(t, bob)
	ctx := context.Background()

	_, err := c.ListImages(ctx, "", "")
	require.NoError(t, err)

	audit, err := c.ListAudit(ctx, 10)
	require.NoError(t, err)
	assert.True(t, audit.Enabled)
	require.Len(t, audit.Records, 1)
	assert.Equal(t, model.ResourceTypeImage, audit.Records[0].ResourceType)
	assert.Equal(t, "idp", audit.Records[0].IdentityProviderID)

	settings, err := c.SetAuditEnabled(ctx, false)
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
	assert.False(t, p.auditor.Enabled())

	_, err = c.GetQuota(ctx, "", "")
	require.NoError(t, err)

	audit, err = c.ListAudit(ctx, 10)
	require.NoError(t, err)
	assert.False(t, audit.Enabled)
	assert.Len(t, audit.Records, 1, "nothing is recorded while auditing is off")

	_, err = c.SetAuditEnabled(ctx, true)
	require.NoError(t, err)
	_, err = c.GetQuota(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, auditCount(t, p))
}

func TestAudit_FailedCallIsRecorded(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	_, err := p.client(t, nil).ListImages(context.Background(), "", "")
	require.Error(t, err)

	audit, err := p.client(t, nil).ListAudit(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, audit.Records, 1)
	assert.Empty(t, audit.Records[0].UserID)
}

func TestAudit_BadLimit(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	resp, err := http.Get(p.http.URL + AuditRoute + "?limit=many")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditSettings_WithoutAuditor(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)
	registry := plugin.NewRegistry()
	factory := cloudconnector.NewFactory(&model.Config{Provider: model.ProviderConfig{ID: p.id}}, registry, nil, nil)
	srv := NewServer(context.Background(), Services{Connectors: factory}, &model.ServerConfig{}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err := NewClientForURL(ts.URL, nil).SetAuditEnabled(context.Background(), false)
	assert.ErrorIs(t, err, model.ErrNotImplemented)

	audit, err := NewClientForURL(ts.URL, nil).ListAudit(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, audit.Records)
}

func postPacket(t *testing.T, url string, body []byte) (int, *intercomponent.Packet) {
	t.Helper()
	resp, err := http.Post(url+IntercomponentRoute, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply intercomponent.Packet
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return resp.StatusCode, &reply
}

func TestIntercomponent_MalformedPacket(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	status, reply := postPacket(t, p.http.URL, []byte("{not a packet"))
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindInvalidParameter, reply.Condition.Kind)
}

func TestIntercomponent_ConditionSetsStatus(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	packet, err := intercomponent.NewPacket(intercomponent.PacketGetImage, p.id, "east",
		intercomponent.ImagePayload{ImageID: "img-missing", User: bob})
	require.NoError(t, err)
	packet.From = "provider-a"
	body, err := json.Marshal(packet)
	require.NoError(t, err)

	status, reply := postPacket(t, p.http.URL, body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, packet.ID, reply.ID)
	require.NotNil(t, reply.Condition)
	assert.ErrorIs(t, reply.Condition.Err(), model.ErrInstanceNotFound)
}

func TestIntercomponent_RemoteRequestRoundTrip(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)
	sender := intercomponent.NewHTTPPacketSender("provider-a", []model.PeerConfig{{ID: p.id, URL: p.http.URL}}, nil)
	defer sender.Close()

	quota, err := intercomponent.NewRemoteGetUserQuotaRequest(sender, p.id, "east", bob).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, quota.Total.Instances)
}

func TestMetricsRoute(t *testing.T) {
	withMetrics := startProvider(t, "provider-b", nil, promhttp.Handler())
	resp, err := http.Get(withMetrics.http.URL + MetricsRoute)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	without := startProvider(t, "provider-c", nil, nil)
	resp2, err := http.Get(without.http.URL + MetricsRoute)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestAPIDocs(t *testing.T) {
	p := startProvider(t, "provider-b", nil, nil)

	resp, err := http.Get(p.http.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/intercomponent")
	assert.True(t, strings.HasPrefix(doc["swagger"].(string), "2."))
}

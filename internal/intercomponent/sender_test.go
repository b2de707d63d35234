// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package intercomponent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

func peerServer(t *testing.T, handler http.HandlerFunc) *HTTPPacketSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewHTTPPacketSender("a", []model.PeerConfig{{ID: "b", URL: srv.URL + "/", Timeout: time.Second}}, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func echoPeer(t *testing.T, seen *Packet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, BasePath+Route, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		reply, err := seen.Reply(IDPayload{ID: "rule-1"})
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(reply)
	}
}

func TestHTTPPacketSender_RoundTrip(t *testing.T) {
	var seen Packet
	s := peerServer(t, echoPeer(t, &seen))

	id, err := NewRemoteCreateSecurityRuleRequest(s, "b", "east", model.NewNetworkOrder(model.BaseOrder{ID: "net-order"}),
		model.SecurityRule{Direction: model.DirectionEgress}, &model.SystemUser{ID: "u"}).Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rule-1", id)

	assert.Equal(t, "a", seen.From)
	assert.Equal(t, "b", seen.To)
	assert.Equal(t, PacketCreateSecurityRule, seen.Type)
	var payload SecurityRulePayload
	require.NoError(t, seen.Decode(&payload))
	assert.Equal(t, "net-order", payload.OrderID)
	assert.Equal(t, model.DirectionEgress, payload.Rule.Direction)
}

func TestHTTPPacketSender_ConditionSurvivesErrorStatus(t *testing.T) {
	s := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		var p Packet
		_ = json.NewDecoder(r.Body).Decode(&p)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(p.Fail(model.NewInvalidParameterError("bad order")))
	})

	err := NewRemoteDeleteSecurityRuleRequest(s, "b", "east", "r-1", nil).Send(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestHTTPPacketSender_StatusHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"serverErrorEmpty", http.StatusInternalServerError, "", model.ErrUnavailableProvider},
		{"serverErrorGarbage", http.StatusBadGateway, "<html>", model.ErrUnavailableProvider},
		{"emptyOK", http.StatusOK, "", model.ErrUnavailableProvider},
		{"garbageOK", http.StatusOK, "<html>", model.ErrUnexpected},
		{"notFoundNoCondition", http.StatusNotFound, `{"id":"x"}`, model.ErrUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := peerServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := NewRemoteGetUserQuotaRequest(s, "b", "east", nil).Send(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPPacketSender_UnknownPeer(t *testing.T) {
	s := NewHTTPPacketSender("a", nil, nil)
	_, err := NewRemoteGetAllImagesRequest(s, "nobody", "", nil).Send(context.Background())
	assert.ErrorIs(t, err, model.ErrUnavailableProvider)
}

func TestHTTPPacketSender_UnreachablePeer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewHTTPPacketSender("a", []model.PeerConfig{{ID: "b", URL: url, Timeout: time.Second}}, nil)
	_, err := NewRemoteGetImageRequest(s, "b", "", "img", nil).Send(context.Background())
	assert.ErrorIs(t, err, model.ErrUnavailableProvider)
}

func TestHTTPPacketSender_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { <-release }))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	s := NewHTTPPacketSender("a", []model.PeerConfig{{ID: "b", URL: srv.URL, Timeout: 50 * time.Millisecond}}, nil)
	_, err := NewRemoteGetUserQuotaRequest(s, "b", "", nil).Send(context.Background())
	assert.ErrorIs(t, err, model.ErrUnavailableProvider)
}

type stubSender struct {
	reply *Packet
}

func (s stubSender) SendPacket(context.Context, *Packet) (*Packet, error) {
	return s.reply, nil
}

func TestExchange_MissingReply(t *testing.T) {
	p, err := NewPacket(PacketGetImage, "b", "", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, exchange(context.Background(), stubSender{}, p, nil), model.ErrUnavailableProvider)

	null := &Packet{ID: p.ID, Payload: json.RawMessage("null")}
	var out model.ImageInstance
	assert.ErrorIs(t, exchange(context.Background(), stubSender{reply: null}, p, &out), model.ErrUnavailableProvider)
	assert.NoError(t, exchange(context.Background(), stubSender{reply: null}, p, nil))
}

func TestRemoteGetInstanceRequest_DecodesVariant(t *testing.T) {
	instance := model.NewVolumeInstance("o-1")
	instance.Size = 20
	env, err := model.InstanceEnvelope(instance)
	require.NoError(t, err)

	s := senderFunc(func(_ context.Context, p *Packet) (*Packet, error) {
		var ref OrderRefPayload
		require.NoError(t, p.Decode(&ref))
		assert.Equal(t, model.ResourceTypeVolume, ref.ResourceType)
		return p.Reply(env)
	})

	got, err := NewRemoteGetInstanceRequest(s, "b", "east", model.NewVolumeOrder(model.BaseOrder{ID: "o-1"})).Send(context.Background())
	require.NoError(t, err)
	require.IsType(t, &model.VolumeInstance{}, got)
	assert.Equal(t, 20, got.(*model.VolumeInstance).Size)
}

type senderFunc func(ctx context.Context, p *Packet) (*Packet, error)

func (f senderFunc) SendPacket(ctx context.Context, p *Packet) (*Packet, error) {
	return f(ctx, p)
}

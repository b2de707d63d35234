// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package intercomponent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"resty.dev/v3"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// BasePath is the API prefix every provider serves Route under.
const BasePath = "/api/v1"

const defaultPeerTimeout = 30 * time.Second

// PacketSender delivers a packet to the provider named in its To field and
// returns the reply. A reply carrying a condition is not an error at this
// level.
type PacketSender interface {
	SendPacket(ctx context.Context, packet *Packet) (*Packet, error)
}

type peer struct {
	url     string
	timeout time.Duration
}

// HTTPPacketSender posts packets to the configured peers.
type HTTPPacketSender struct {
	localID string
	peers   map[string]peer
	resty   *resty.Client
}

func NewHTTPPacketSender(localID string, peers []model.PeerConfig, net *http.Client) *HTTPPacketSender {
	client := resty.New()
	if net != nil {
		client = resty.NewWithClient(net)
	}

	s := &HTTPPacketSender{
		localID: localID,
		peers:   make(map[string]peer, len(peers)),
		resty:   client,
	}
	for _, p := range peers {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = defaultPeerTimeout
		}
		s.peers[p.ID] = peer{url: strings.TrimSuffix(p.URL, "/"), timeout: timeout}
	}
	return s
}

func (s *HTTPPacketSender) Close() error {
	return s.resty.Close()
}

func (s *HTTPPacketSender) SendPacket(ctx context.Context, packet *Packet) (*Packet, error) {
	p, ok := s.peers[packet.To]
	if !ok {
		return nil, model.NewUnavailableProviderError("no address configured for provider %s", packet.To)
	}
	packet.From = s.localID

	body, err := json.Marshal(packet)
	if err != nil {
		return nil, model.NewUnexpectedError("failed to encode %s packet: %v", packet.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := s.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(bytes.NewReader(body)).
		Post(p.url + BasePath + Route)
	if err != nil {
		return nil, unavailable(packet.To, err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	var reply Packet
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		if errors.Is(err, io.EOF) {
			if resp.StatusCode() >= http.StatusInternalServerError {
				return nil, model.NewUnavailableProviderError("provider %s answered %d", packet.To, resp.StatusCode())
			}
			return nil, model.NewUnavailableProviderError("provider %s sent an empty response to %s", packet.To, packet.Type)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, model.NewUnavailableProviderError("provider %s answered %d", packet.To, resp.StatusCode())
		}
		return nil, model.NewUnexpectedError("malformed reply from provider %s: %v", packet.To, err)
	}

	if reply.Condition != nil {
		return &reply, nil
	}

	switch code := resp.StatusCode(); {
	case code >= http.StatusInternalServerError:
		return nil, model.NewUnavailableProviderError("provider %s answered %d", packet.To, code)
	case code != http.StatusOK:
		return nil, model.NewUnexpectedError("unexpected response code from provider %s: %d", packet.To, code)
	}

	if reply.ID != packet.ID {
		slog.Warn("Reply does not match request", "provider", packet.To, "request", packet.ID, "reply", reply.ID)
	}
	return &reply, nil
}

func unavailable(provider string, err error) error {
	msg := "provider " + provider + " is unreachable"
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		msg = "provider " + provider + " refused the connection"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "provider " + provider + " did not answer in time"
	}
	return &model.FederationError{Kind: model.KindUnavailableProvider, Message: msg, Cause: err}
}

// exchange sends one request and decodes its reply into out, when out is not
// nil. A reply without payload is treated as an unavailable provider.
func exchange(ctx context.Context, sender PacketSender, packet *Packet, out any) error {
	reply, err := sender.SendPacket(ctx, packet)
	if err != nil {
		return err
	}
	if reply == nil {
		return model.NewUnavailableProviderError("provider %s sent no reply to %s", packet.To, packet.Type)
	}
	if err := reply.Condition.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(reply.Payload) == 0 || string(reply.Payload) == "null" {
		return model.NewUnavailableProviderError("provider %s sent an empty response to %s", packet.To, packet.Type)
	}
	return reply.Decode(out)
}

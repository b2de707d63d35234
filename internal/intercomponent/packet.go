// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package intercomponent is the protocol providers of a federation use to
// serve each other's orders.
package intercomponent

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/segmentio/ksuid"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Route is where a provider accepts packets, relative to its API base path.
const Route = "/intercomponent"

type PacketType string

const (
	PacketCreateOrder        PacketType = "createOrder"
	PacketDeleteOrder        PacketType = "deleteOrder"
	PacketGetOrder           PacketType = "getOrder"
	PacketGetInstance        PacketType = "getInstance"
	PacketGetUserQuota       PacketType = "getUserQuota"
	PacketGetAllImages       PacketType = "getAllImages"
	PacketGetImage           PacketType = "getImage"
	PacketGetAllSecurityRule PacketType = "getAllSecurityRules"
	PacketCreateSecurityRule PacketType = "createSecurityRule"
	PacketDeleteSecurityRule PacketType = "deleteSecurityRule"
)

// Packet is both a request and its reply. A reply keeps the id and type of the
// request, swaps From and To, and carries either a payload or a condition.
type Packet struct {
	ID        string          `json:"id"`
	Type      PacketType      `json:"type"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	CloudName string          `json:"cloudName,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Condition *Condition      `json:"condition,omitempty"`
}

func NewPacket(packetType PacketType, to, cloudName string, payload any) (*Packet, error) {
	p := &Packet{
		ID:        ksuid.New().String(),
		Type:      packetType,
		To:        to,
		CloudName: cloudName,
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", packetType, err)
		}
		p.Payload = body
	}
	return p, nil
}

// Reply builds the answer to p, with payload encoded as its body.
func (p *Packet) Reply(payload any) (*Packet, error) {
	r := p.reply()
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s reply: %w", p.Type, err)
		}
		r.Payload = body
	}
	return r, nil
}

// Fail builds the answer to p that carries err.
func (p *Packet) Fail(err error) *Packet {
	r := p.reply()
	r.Condition = ConditionOf(err)
	return r
}

func (p *Packet) reply() *Packet {
	return &Packet{ID: p.ID, Type: p.Type, From: p.To, To: p.From, CloudName: p.CloudName}
}

// Decode unmarshals the payload into v. An empty payload is an error.
func (p *Packet) Decode(v any) error {
	if len(p.Payload) == 0 {
		return model.NewInvalidParameterError("%s packet %s has no payload", p.Type, p.ID)
	}
	if err := json.Unmarshal(p.Payload, v); err != nil {
		return model.NewInvalidParameterError("malformed %s payload: %v", p.Type, err)
	}
	return nil
}

// Payloads carried by the packets.

type OrderPayload struct {
	Order *model.Envelope `json:"order"`
}

type OrderRefPayload struct {
	OrderID      string             `json:"orderId"`
	ResourceType model.ResourceType `json:"resourceType"`
	User         *model.SystemUser  `json:"user,omitempty"`
}

type UserPayload struct {
	User *model.SystemUser `json:"user,omitempty"`
}

type ImagePayload struct {
	ImageID string            `json:"imageId"`
	User    *model.SystemUser `json:"user,omitempty"`
}

type SecurityRulePayload struct {
	OrderID string              `json:"orderId"`
	Rule    *model.SecurityRule `json:"rule,omitempty"`
	User    *model.SystemUser   `json:"user,omitempty"`
}

type RuleRefPayload struct {
	RuleID string            `json:"ruleId"`
	User   *model.SystemUser `json:"user,omitempty"`
}

type IDPayload struct {
	ID string `json:"id"`
}

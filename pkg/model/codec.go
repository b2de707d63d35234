// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Envelope carries a polymorphic order or instance. Kind selects the concrete
// variant; the declared type stays inside the body, untouched, so a tag that
// drifted on the sender side is still visible to the receiver.
type Envelope struct {
	Kind ResourceType    `json:"kind"`
	Body json.RawMessage `json:"body"`
}

func EncodeOrder(order Order) ([]byte, error) {
	env, err := OrderEnvelope(order)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func OrderEnvelope(order Order) (*Envelope, error) {
	if order == nil {
		return nil, NewInvalidParameterError("order is required")
	}
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order %s: %w", order.Base().ID, err)
	}
	return &Envelope{Kind: order.Kind(), Body: body}, nil
}

func DecodeOrder(data []byte) (Order, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, NewInvalidParameterError("malformed order envelope: %v", err)
	}
	return env.Order()
}

// Order decodes the envelope body into the variant named by Kind.
func (e *Envelope) Order() (Order, error) {
	var order Order
	switch e.Kind {
	case ResourceTypeCompute:
		order = &ComputeOrder{}
	case ResourceTypeNetwork:
		order = &NetworkOrder{}
	case ResourceTypeVolume:
		order = &VolumeOrder{}
	case ResourceTypeAttachment:
		order = &AttachmentOrder{}
	case ResourceTypePublicIP:
		order = &PublicIPOrder{}
	default:
		return nil, NewInvalidParameterError("unsupported order kind %q", e.Kind)
	}

	if err := json.Unmarshal(e.Body, order); err != nil {
		return nil, NewInvalidParameterError("malformed %s order: %v", e.Kind, err)
	}
	return order, nil
}

func InstanceEnvelope(instance OrderInstance) (*Envelope, error) {
	body, err := json.Marshal(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instance: %w", err)
	}
	return &Envelope{Kind: instance.Kind(), Body: body}, nil
}

// Instance decodes the envelope body into the instance subtype named by Kind.
func (e *Envelope) Instance() (OrderInstance, error) {
	var instance OrderInstance
	switch e.Kind {
	case ResourceTypeCompute:
		instance = &ComputeInstance{}
	case ResourceTypeNetwork:
		instance = &NetworkInstance{}
	case ResourceTypeVolume:
		instance = &VolumeInstance{}
	case ResourceTypeAttachment:
		instance = &AttachmentInstance{}
	case ResourceTypePublicIP:
		instance = &PublicIPInstance{}
	default:
		return nil, NewInvalidParameterError("unsupported instance kind %q", e.Kind)
	}

	if err := json.Unmarshal(e.Body, instance); err != nil {
		return nil, NewInvalidParameterError("malformed %s instance: %v", e.Kind, err)
	}
	return instance, nil
}

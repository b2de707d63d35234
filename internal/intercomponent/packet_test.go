// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package intercomponent

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

func TestPacket_ReplySwapsEndpoints(t *testing.T) {
	p, err := NewPacket(PacketGetImage, "b", "east", ImagePayload{ImageID: "img-1"})
	require.NoError(t, err)
	p.From = "a"
	assert.NotEmpty(t, p.ID)

	reply, err := p.Reply(IDPayload{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, reply.ID)
	assert.Equal(t, p.Type, reply.Type)
	assert.Equal(t, "b", reply.From)
	assert.Equal(t, "a", reply.To)
	assert.Equal(t, "east", reply.CloudName)
	assert.Nil(t, reply.Condition)

	var id IDPayload
	require.NoError(t, reply.Decode(&id))
	assert.Equal(t, "x", id.ID)
}

func TestPacket_DecodeRejectsMissingOrMalformedPayload(t *testing.T) {
	p, err := NewPacket(PacketGetAllImages, "b", "", nil)
	require.NoError(t, err)

	var v UserPayload
	assert.ErrorIs(t, p.Decode(&v), model.ErrInvalidParameter)

	p.Payload = json.RawMessage(`{"user":`)
	assert.ErrorIs(t, p.Decode(&v), model.ErrInvalidParameter)
}

func TestPacket_FailCarriesCondition(t *testing.T) {
	p, err := NewPacket(PacketDeleteOrder, "b", "", nil)
	require.NoError(t, err)

	reply := p.Fail(model.NewError(model.KindQuotaExceeded, "no room"))
	require.NotNil(t, reply.Condition)
	assert.Equal(t, model.KindQuotaExceeded, reply.Condition.Kind)
	assert.Equal(t, "no room", reply.Condition.Message)
	assert.Empty(t, reply.Payload)
}

func TestCondition_RoundTripKeepsKind(t *testing.T) {
	kinds := []model.ErrorKind{
		model.KindUnauthenticated,
		model.KindUnauthorized,
		model.KindInvalidParameter,
		model.KindMismatchingResourceType,
		model.KindInstanceNotFound,
		model.KindUnexpected,
		model.KindUnavailableProvider,
		model.KindNotImplemented,
		model.KindQuotaExceeded,
		model.KindRemoteCommunication,
	}
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom(kinds).Draw(t, "kind")
		msg := rapid.String().Draw(t, "message")

		data, err := json.Marshal(ConditionOf(model.NewError(kind, "%s", msg)))
		if err != nil {
			t.Fatal(err)
		}
		var c Condition
		if err := json.Unmarshal(data, &c); err != nil {
			t.Fatal(err)
		}

		var fe *model.FederationError
		if !errors.As(c.Err(), &fe) {
			t.Fatalf("condition did not rebuild a federation error")
		}
		if fe.Kind != kind || fe.Message != msg {
			t.Fatalf("got %s %q, want %s %q", fe.Kind, fe.Message, kind, msg)
		}
	})
}

func TestCondition_ForeignErrorsAreUnexpected(t *testing.T) {
	c := ConditionOf(errors.New("nil pointer"))
	assert.Equal(t, model.KindUnexpected, c.Kind)
	assert.Equal(t, "nil pointer", c.Message)

	assert.Nil(t, ConditionOf(nil))
	var none *Condition
	assert.NoError(t, none.Err())
}

func TestCondition_UnknownKindIsUnexpected(t *testing.T) {
	c := &Condition{Kind: "Exploded", Message: "boom"}
	assert.ErrorIs(t, c.Err(), model.ErrUnexpected)
}

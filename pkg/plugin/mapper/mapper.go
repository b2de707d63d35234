// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package mapper holds the identity mappers that ship with the agent.
package mapper

import (
	"context"
	"errors"
	"maps"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

const (
	OneToOneName = "one-to-one"
	AllToOneName = "all-to-one"

	defaultTokenAttribute = "token"
)

// Register makes the builtin mappers available to r.
func Register(r *plugin.Registry) error {
	return errors.Join(
		r.RegisterMapper(OneToOneName, NewOneToOne),
		r.RegisterMapper(AllToOneName, NewAllToOne),
	)
}

// OneToOne maps every federation user onto a cloud user with the same id. The
// cloud token travels in one of the federation user's attributes.
type OneToOne struct {
	tokenAttribute string
}

// NewOneToOne reads the optional "tokenAttribute" param, "token" by default.
func NewOneToOne(params map[string]string) (plugin.MapperPlugin, error) {
	attr := params["tokenAttribute"]
	if attr == "" {
		attr = defaultTokenAttribute
	}
	return &OneToOne{tokenAttribute: attr}, nil
}

func (m *OneToOne) Map(ctx context.Context, user *model.SystemUser) (*model.CloudUser, error) {
	if user == nil {
		return nil, model.NewUnauthenticatedError("no federation user to map")
	}
	token, ok := user.Attributes[m.tokenAttribute]
	if !ok || token == "" {
		return nil, model.NewUnauthenticatedError("user %s carries no %s attribute", user, m.tokenAttribute)
	}

	attrs := maps.Clone(user.Attributes)
	delete(attrs, m.tokenAttribute)
	return &model.CloudUser{
		ID:         user.ID,
		Name:       user.Name,
		Token:      token,
		Attributes: attrs,
	}, nil
}

// AllToOne maps every federation user onto the single configured cloud
// credential.
type AllToOne struct {
	credential model.CloudUser
}

// NewAllToOne requires the "id" and "token" params; "name" defaults to the id.
func NewAllToOne(params map[string]string) (plugin.MapperPlugin, error) {
	id, token := params["id"], params["token"]
	if id == "" || token == "" {
		return nil, errors.New("all-to-one mapper requires id and token params")
	}
	name := params["name"]
	if name == "" {
		name = id
	}
	return &AllToOne{credential: model.CloudUser{ID: id, Name: name, Token: token}}, nil
}

func (m *AllToOne) Map(ctx context.Context, user *model.SystemUser) (*model.CloudUser, error) {
	if user == nil {
		return nil, model.NewUnauthenticatedError("no federation user to map")
	}
	out := m.credential
	out.Attributes = map[string]string{"federationUser": user.String()}
	return &out, nil
}

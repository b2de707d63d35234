// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package intercomponent

import (
	"errors"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Condition is an error on the wire.
type Condition struct {
	Kind    model.ErrorKind `json:"kind"`
	Message string          `json:"message,omitempty"`
}

// ConditionOf translates err for the wire. Errors outside the federation
// taxonomy travel as Unexpected.
func ConditionOf(err error) *Condition {
	if err == nil {
		return nil
	}
	var fe *model.FederationError
	if errors.As(err, &fe) {
		return &Condition{Kind: fe.Kind, Message: fe.Message}
	}
	return &Condition{Kind: model.KindUnexpected, Message: err.Error()}
}

// Err rebuilds the federation error a peer reported. A kind this provider does
// not know is Unexpected.
func (c *Condition) Err() error {
	if c == nil {
		return nil
	}
	kind, ok := model.ParseErrorKind(string(c.Kind))
	if !ok {
		return model.NewUnexpectedError("peer reported unknown condition %s: %s", c.Kind, c.Message)
	}
	return &model.FederationError{Kind: kind, Message: c.Message}
}

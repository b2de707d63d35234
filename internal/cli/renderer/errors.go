// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package renderer

import (
	"errors"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/platform-engineering-labs/skyfed/internal/api"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

var hints = map[model.ErrorKind][]string{
	model.KindUnauthenticated: {
		"pass the federation user with --user-id and --identity-provider",
		"clouds mapped one-to-one also need --token or SKYFED_TOKEN",
	},
	model.KindUnauthorized: {
		"the order belongs to another user",
	},
	model.KindInvalidParameter: {
		"list the configured clouds with '" + display.Tool + " clouds'",
	},
	model.KindUnavailableProvider: {
		"check the peer url in the agent configuration",
		"make sure the agent of that provider is running",
	},
	model.KindNotImplemented: {
		"the cloud driver does not offer this operation",
	},
}

// RenderErrorMessage explains an error returned by the agent, with hints for
// the federation error kinds a user can act on.
func RenderErrorMessage(err error) (string, error) {
	if errors.Is(err, api.ErrAgentNotRunning) {
		return display.Red(err.Error()) + "\n" +
			display.Grey("start it with '"+display.Tool+" agent start'") + "\n", nil
	}

	var fe *model.FederationError
	if !errors.As(err, &fe) {
		return display.Red(err.Error()) + "\n", nil
	}

	label := display.Red(string(fe.Kind))
	if fe.Message != "" {
		label += ": " + fe.Message
	}
	if len(hints[fe.Kind]) == 0 {
		return label + "\n", nil
	}

	root := gtree.NewRoot(label)
	for _, h := range hints[fe.Kind] {
		root.Add(display.Grey(h))
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

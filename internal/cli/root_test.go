// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/skyfed/internal/api"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/config"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent/facade"
	"github.com/platform-engineering-labs/skyfed/internal/orders"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/emulated"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/mapper"
)

// startAgent serves the agent API of provider-a with one emulated cloud and
// returns the endpoint flags pointing at it.
func startAgent(t *testing.T) []string {
	t.Helper()

	registry := plugin.NewRegistry()
	require.NoError(t, registry.RegisterDriver(emulated.NewDriver()))
	require.NoError(t, mapper.Register(registry))

	cfg := &model.Config{
		Provider: model.ProviderConfig{ID: "provider-a", DefaultCloud: "east"},
		Clouds: []model.CloudConfig{{
			Name:   "east",
			Driver: emulated.DriverName,
			Mapper: model.MapperConfig{Type: mapper.OneToOneName},
		}},
	}
	auditor := cloudconnector.NewAuditor(nil)
	factory := cloudconnector.NewFactory(cfg, registry, auditor, nil)
	srv := api.NewServer(context.Background(), api.Services{
		Facade:       facade.NewRemoteFacade(factory, orders.NewHolder()),
		Connectors:   factory,
		Auditor:      auditor,
		DefaultCloud: "east",
	}, &model.ServerConfig{}, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)

	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HOME", t.TempDir())
	return []string{"--no-color", "--api-url", u.Scheme + "://" + u.Hostname(), "--api-port", u.Port()}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	display.DisableColors()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	code := Execute(root, args, &errOut)
	return code, out.String(), errOut.String()
}

func TestClouds_Tree(t *testing.T) {
	endpoint := startAgent(t)

	code, out, _ := run(t, append([]string{"clouds"}, endpoint...)...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "provider-a")
	assert.Contains(t, out, "east (default)")
}

func TestImagesList_MachineQuery(t *testing.T) {
	endpoint := startAgent(t)

	args := append([]string{"images", "list",
		"--user-id", "bob", "--identity-provider", "idp", "--token", "secret",
		"--output-consumer", "machine", "--query", "images.#.id"}, endpoint...)
	code, out, errOut := run(t, args...)
	require.Equal(t, 0, code, errOut)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.ElementsMatch(t, []string{"img-ubuntu-24.04", "img-debian-12"}, ids)
}

func TestImagesList_TokenFromEnvironment(t *testing.T) {
	endpoint := startAgent(t)
	t.Setenv("SKYFED_TOKEN", "secret")

	code, out, errOut := run(t, append([]string{"images", "list", "--user-id", "bob"}, endpoint...)...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "img-debian-12")
}

func TestImagesList_AnonymousShowsHint(t *testing.T) {
	endpoint := startAgent(t)

	code, _, errOut := run(t, append([]string{"images", "list"}, endpoint...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unauthenticated")
	assert.Contains(t, errOut, "--user-id")
}

func TestImagesGet_RequiresOneID(t *testing.T) {
	endpoint := startAgent(t)

	code, _, errOut := run(t, append([]string{"images", "get"}, endpoint...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "expected exactly one image id")
}

func TestQuota_YAML(t *testing.T) {
	endpoint := startAgent(t)

	args := append([]string{"quota", "--user-id", "bob", "--token", "secret",
		"--output-consumer", "machine", "--output-schema", "yaml", "--query", "quota.totalQuota.instances"}, endpoint...)
	code, out, errOut := run(t, args...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "20\n", out)
}

func TestAudit_Toggle(t *testing.T) {
	endpoint := startAgent(t)

	code, _, errOut := run(t, append([]string{"audit", "disable"}, endpoint...)...)
	require.Equal(t, 0, code, errOut)

	code, out, errOut := run(t, append([]string{"audit", "list", "--output-consumer", "machine", "--query", "enabled"}, endpoint...)...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "false\n", out)
}

func TestOutputFlags_AreValidated(t *testing.T) {
	endpoint := startAgent(t)

	code, _, errOut := run(t, append([]string{"clouds", "--output-consumer", "robot"}, endpoint...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "output consumer")
}

func TestAgentNotRunning(t *testing.T) {
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HOME", t.TempDir())

	// Nothing listens on port 1.
	code, _, errOut := run(t, "clouds", "--no-color", "--api-url", "http://127.0.0.1", "--api-port", "1")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

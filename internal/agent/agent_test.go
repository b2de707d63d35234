// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package agent

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/skyfed/internal/api"
	"github.com/platform-engineering-labs/skyfed/internal/config"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Provider = model.ProviderConfig{ID: "provider-a", DefaultCloud: "east"}
	cfg.Clouds = []model.CloudConfig{{Name: "east", Driver: "emulated", Mapper: model.MapperConfig{
		Type:   "all-to-one",
		Params: map[string]string{"id": "svc", "token": "secret"},
	}}}
	cfg.Server = model.ServerConfig{Hostname: "127.0.0.1", Port: freePort(t)}
	cfg.Datastore.Sqlite.FilePath = filepath.Join(dir, "skyfed.db")
	cfg.Logging.FilePath = filepath.Join(dir, "skyfed.log")
	cfg.Audit.Enabled = false
	return cfg
}

func TestAgent_RunServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t)
	pidFile := filepath.Join(t.TempDir(), "skyfed.pid")
	a := New(cfg, "agent-1", WithPidFile(pidFile))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	client := api.NewClientForURL(fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port), nil)
	defer client.Close()

	waitCtx, waitCancel := context.WithTimeout(ctx, 10*time.Second)
	defer waitCancel()
	require.True(t, client.WaitOnAvailable(waitCtx))
	assert.FileExists(t, pidFile)

	clouds, err := client.Clouds(ctx)
	require.NoError(t, err)
	assert.Equal(t, "provider-a", clouds.ProviderID)
	assert.Equal(t, []string{"east"}, clouds.Clouds)

	audit, err := client.ListAudit(ctx, 0)
	require.NoError(t, err)
	assert.False(t, audit.Enabled, "the configured audit switch is applied")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("agent did not stop")
	}
	assert.NoFileExists(t, pidFile)
}

func TestAgent_RefusesSecondInstance(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "skyfed.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("1"), 0600))

	err := New(testConfig(t), "agent-1", WithPidFile(pidFile)).Run(context.Background())
	assert.ErrorContains(t, err, "already running")
}

func TestAgent_StopWithoutPidFile(t *testing.T) {
	a := New(testConfig(t), "agent-1", WithPidFile(filepath.Join(t.TempDir(), "absent.pid")))
	assert.ErrorContains(t, a.Stop(), "not running")
}

func TestAgent_StopRejectsGarbagePidFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "skyfed.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte("not-a-pid"), 0600))

	assert.ErrorContains(t, New(testConfig(t), "agent-1", WithPidFile(pidFile)).Stop(), "invalid pid file")
}

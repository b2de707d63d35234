// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package app carries what every CLI command needs: the configuration, the
// federation user to act as and a client of the local agent.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/platform-engineering-labs/skyfed/internal/api"
	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/internal/config"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

type App struct {
	Config *model.CliConfig
	User   *model.SystemUser

	net *http.Client
}

func NewApp() *App {
	return &App{Config: &config.Default().Cli}
}

// NewAppWithClient is used by tests to reach an agent over a custom transport.
func NewAppWithClient(cfg *model.CliConfig, net *http.Client) *App {
	return &App{Config: cfg, net: net}
}

func (a *App) LoadConfig(path string) error {
	cfg, err := config.LoadCli(path)
	if err != nil {
		return fmt.Errorf("%w%s", err, display.ConfigHint(config.ConfigFile(path)))
	}
	a.Config = cfg
	return nil
}

// OverrideEndpoint replaces the configured agent address; zero values keep it.
func (a *App) OverrideEndpoint(url string, port int) {
	if url != "" {
		a.Config.API.URL = url
	}
	if port > 0 {
		a.Config.API.Port = port
	}
}

func (a *App) client() *api.Client {
	return api.NewClient(a.Config.API, a.net).WithUser(a.User)
}

func (a *App) Health(ctx context.Context) (*apimodel.Health, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.Health(ctx)
}

func (a *App) Clouds(ctx context.Context) (*apimodel.CloudsResponse, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.Clouds(ctx)
}

func (a *App) Images(ctx context.Context, provider, cloud string) (*apimodel.ImagesResponse, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.ListImages(ctx, provider, cloud)
}

func (a *App) Image(ctx context.Context, provider, cloud, imageID string) (*model.ImageInstance, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.GetImage(ctx, provider, cloud, imageID)
}

func (a *App) Quota(ctx context.Context, provider, cloud string) (*apimodel.QuotaResponse, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.GetQuota(ctx, provider, cloud)
}

func (a *App) Audit(ctx context.Context, limit int) (*apimodel.AuditResponse, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.ListAudit(ctx, limit)
}

func (a *App) SetAudit(ctx context.Context, enabled bool) (*apimodel.AuditSettings, error) {
	c := a.client()
	//nolint:errcheck
	defer c.Close()
	return c.SetAuditEnabled(ctx, enabled)
}

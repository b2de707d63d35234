// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"resty.dev/v3"

	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// ErrAgentNotRunning is returned when nothing listens at the agent address.
var ErrAgentNotRunning = errors.New("skyfed agent is not running")

type Client struct {
	endpoint string
	resty    *resty.Client
}

func NewClient(cfg model.APIConfig, net *http.Client) *Client {
	client := resty.New()

	if net != nil {
		client = resty.NewWithClient(net)
	}

	return &Client{
		endpoint: fmt.Sprintf("%s:%d", strings.TrimSuffix(cfg.URL, "/"), cfg.Port),
		resty:    client,
	}
}

// NewClientForURL targets a full base URL, as httptest servers give.
func NewClientForURL(baseURL string, net *http.Client) *Client {
	c := NewClient(model.APIConfig{}, net)
	c.endpoint = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *Client) Close() error {
	return c.resty.Close()
}

// WithUser makes every following request act for user.
func (c *Client) WithUser(user *model.SystemUser) *Client {
	if user == nil {
		return c
	}
	c.resty.SetHeader(HeaderUserID, user.ID)
	if user.Name != "" {
		c.resty.SetHeader(HeaderUserName, user.Name)
	}
	if user.IdentityProviderID != "" {
		c.resty.SetHeader(HeaderIdentityProvider, user.IdentityProviderID)
	}
	if token := user.Attributes["token"]; token != "" {
		c.resty.SetHeader(HeaderToken, token)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*apimodel.Health, error) {
	var health apimodel.Health
	if err := c.get(ctx, HealthRoute, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// WaitOnAvailable polls the health endpoint until it answers or ctx is done.
func (c *Client) WaitOnAvailable(ctx context.Context) bool {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		if _, err := c.Health(ctx); err == nil {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (c *Client) Clouds(ctx context.Context) (*apimodel.CloudsResponse, error) {
	var clouds apimodel.CloudsResponse
	if err := c.get(ctx, CloudsRoute, nil, &clouds); err != nil {
		return nil, err
	}
	return &clouds, nil
}

func (c *Client) ListImages(ctx context.Context, provider, cloud string) (*apimodel.ImagesResponse, error) {
	var images apimodel.ImagesResponse
	if err := c.get(ctx, ImagesRoute, target(provider, cloud), &images); err != nil {
		return nil, err
	}
	return &images, nil
}

func (c *Client) GetImage(ctx context.Context, provider, cloud, imageID string) (*model.ImageInstance, error) {
	var image model.ImageInstance
	if err := c.get(ctx, ImagesRoute+"/"+url.PathEscape(imageID), target(provider, cloud), &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (c *Client) GetQuota(ctx context.Context, provider, cloud string) (*apimodel.QuotaResponse, error) {
	var quota apimodel.QuotaResponse
	if err := c.get(ctx, QuotaRoute, target(provider, cloud), &quota); err != nil {
		return nil, err
	}
	return &quota, nil
}

func (c *Client) ListAudit(ctx context.Context, limit int) (*apimodel.AuditResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var audit apimodel.AuditResponse
	if err := c.get(ctx, AuditRoute, query, &audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

func (c *Client) SetAuditEnabled(ctx context.Context, enabled bool) (*apimodel.AuditSettings, error) {
	body, err := json.Marshal(apimodel.AuditSettings{Enabled: enabled})
	if err != nil {
		return nil, err
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(c.endpoint + AuditSettingsRoute)
	if err != nil {
		return nil, connectionError(err)
	}

	var settings apimodel.AuditSettings
	if err := decodeResponse(resp, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func target(provider, cloud string) url.Values {
	query := url.Values{}
	if provider != "" {
		query.Set("provider", provider)
	}
	if cloud != "" {
		query.Set("cloud", cloud)
	}
	return query
}

func (c *Client) get(ctx context.Context, route string, query url.Values, out any) error {
	req := c.resty.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(c.endpoint + route)
	if err != nil {
		return connectionError(err)
	}
	return decodeResponse(resp, out)
}

func connectionError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrAgentNotRunning
	}
	return err
}

// decodeResponse reads a success body into out, or turns an error body back
// into the federation error the agent reported.
func decodeResponse(resp *resty.Response, out any) error {
	//nolint:errcheck
	defer resp.Body.Close()

	if resp.StatusCode() != http.StatusOK {
		var errResp apimodel.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Kind == "" {
			return fmt.Errorf("unexpected response code from the skyfed agent: %d", resp.StatusCode())
		}
		return errResp.Err()
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

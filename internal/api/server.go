// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shirou/gopsutil/v4/host"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/platform-engineering-labs/skyfed"
	_ "github.com/platform-engineering-labs/skyfed/docs"
	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/logging"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

const (
	BasePath            = intercomponent.BasePath
	IntercomponentRoute = BasePath + intercomponent.Route
	HealthRoute         = BasePath + "/health"
	CloudsRoute         = BasePath + "/clouds"
	ImagesRoute         = BasePath + "/images"
	ImageRoute          = BasePath + "/images/:id"
	QuotaRoute          = BasePath + "/quota"
	AuditRoute          = BasePath + "/audit"

	AdminBasePath      = BasePath + "/admin"
	AuditSettingsRoute = AdminBasePath + "/audit"

	MetricsRoute = "/metrics"
	APIDocsRoute = "/swagger/*"
)

// Headers identifying the federation user a CLI request acts for.
const (
	HeaderUserID           = "X-Skyfed-User-Id"
	HeaderUserName         = "X-Skyfed-User-Name"
	HeaderIdentityProvider = "X-Skyfed-Identity-Provider"
	HeaderToken            = "X-Skyfed-Token"
)

const maxPacketSize = 4 << 20

var tracer = otel.Tracer("skyfed/api")

// PacketHandler serves the packets other providers send. The RemoteFacade
// implements it.
type PacketHandler interface {
	HandlePacket(ctx context.Context, p *intercomponent.Packet) *intercomponent.Packet
}

// Connectors resolves the connector of a provider and cloud. The
// cloudconnector.Factory implements it.
type Connectors interface {
	LocalID() string
	GetConnector(providerID, cloudName string) (cloudconnector.CloudConnector, error)
	CloudNames() []string
}

type AuditLog interface {
	ListAuditableRequests(ctx context.Context, limit int) ([]model.AuditableRequest, error)
}

type AuditSwitch interface {
	Enabled() bool
	SetEnabled(enabled bool)
}

// Services are what the API exposes. Audit and Auditor may be nil.
type Services struct {
	Facade       PacketHandler
	Connectors   Connectors
	Audit        AuditLog
	Auditor      AuditSwitch
	DefaultCloud string
	Peers        []string
}

type Server struct {
	echo           *echo.Echo
	ctx            context.Context
	services       Services
	serverConfig   *model.ServerConfig
	metricsHandler http.Handler
	started        time.Time
}

func NewServer(ctx context.Context, services Services, serverConfig *model.ServerConfig, metricsHandler http.Handler) *Server {
	server := &Server{
		ctx:            ctx,
		services:       services,
		serverConfig:   serverConfig,
		metricsHandler: metricsHandler,
		started:        time.Now(),
	}

	server.echo = server.configureEcho()

	return server
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server context is done.
func (s *Server) Start() {
	go func() {
		listen := fmt.Sprintf("%s:%d", s.serverConfig.Hostname, s.serverConfig.Port)
		slog.Info("API server listening", "address", listen, "tls", s.serverConfig.TLSCert != "")

		var err error
		if s.serverConfig.TLSCert != "" && s.serverConfig.TLSKey != "" {
			err = s.echo.StartTLS(listen, s.serverConfig.TLSCert, s.serverConfig.TLSKey)
		} else {
			err = s.echo.Start(listen)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.echo.Logger.Error(err)
		}
	}()
	<-s.ctx.Done()
	s.Stop(false)
}

// Stop gracefully shuts down the server, waiting for ongoing requests to
// complete unless force is set.
func (s *Server) Stop(force bool) {
	slog.Info("API server received shutdown")
	if force {
		if err := s.echo.Close(); err != nil {
			slog.Info("API server error when closing", "error", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		slog.Info("API server error when shutting down", "error", err)
	}
	slog.Info("API Server successfully shutdown")
}

// @title skyfed REST API
// @version 1.0
// @description Federation endpoint and local administration of a skyfed provider.
// @host localhost:49700
// @BasePath /api/v1
func (s *Server) configureEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Logger = logging.NewEchoLogger()
	e.StdLogger = log.Default()
	e.Use(middleware.Recover())

	// Federation endpoint
	e.POST(IntercomponentRoute, s.Intercomponent)

	// Local endpoints used by the CLI
	e.GET(HealthRoute, s.Health)
	e.GET(CloudsRoute, s.Clouds)
	e.GET(ImagesRoute, s.ListImages)
	e.GET(ImageRoute, s.GetImage)
	e.GET(QuotaRoute, s.GetQuota)
	e.GET(AuditRoute, s.ListAudit)
	e.PUT(AuditSettingsRoute, s.UpdateAuditSettings)

	// Prometheus metrics endpoint (if enabled)
	if s.metricsHandler != nil {
		e.GET(MetricsRoute, echo.WrapHandler(s.metricsHandler))
	}

	// API docs endpoint
	e.GET(APIDocsRoute, echoSwagger.WrapHandler)

	return e
}

// @Summary Deliver a packet
// @Description Entry point of the federation. Another provider posts a packet and receives the reply packet, which carries either a payload or a condition.
// @Tags federation
// @Accept json
// @Produce json
// @Success 200 {object} intercomponent.Packet "OK: The reply packet."
// @Failure 400 {object} intercomponent.Packet "Bad Request: The packet could not be decoded or was rejected."
// @Failure 404 {object} intercomponent.Packet "Not Found: The order or instance is unknown."
// @Router /intercomponent [post]
func (s *Server) Intercomponent(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxPacketSize))
	if err != nil {
		return writePacket(c, (&intercomponent.Packet{}).Fail(model.NewInvalidParameterError("failed to read packet: %v", err)))
	}

	var packet intercomponent.Packet
	if err := json.Unmarshal(body, &packet); err != nil {
		slog.Warn("Rejected malformed packet", "remote", c.RealIP(), "error", err)
		return writePacket(c, (&intercomponent.Packet{}).Fail(model.NewInvalidParameterError("malformed packet: %v", err)))
	}

	ctx, span := tracer.Start(c.Request().Context(), "Intercomponent")
	defer span.End()
	span.SetAttributes(
		attribute.String("packet.type", string(packet.Type)),
		attribute.String("packet.from", packet.From),
	)

	reply := s.services.Facade.HandlePacket(ctx, &packet)
	if reply.Condition != nil {
		span.SetStatus(codes.Error, string(reply.Condition.Kind))
	}
	return writePacket(c, reply)
}

func writePacket(c echo.Context, p *intercomponent.Packet) error {
	status := http.StatusOK
	if p.Condition != nil {
		status = apimodel.StatusOf(p.Condition.Kind)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSONBlob(status, body)
}

// @Summary Health Check
// @Description Reports that the agent is serving, with its version and host.
// @Tags health
// @Produce json
// @Success 200 {object} apimodel.Health
// @Router /health [get]
func (s *Server) Health(c echo.Context) error {
	health := apimodel.Health{
		Status:     "ok",
		Version:    skyfed.Version,
		ProviderID: s.services.Connectors.LocalID(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	}
	if info, err := host.InfoWithContext(c.Request().Context()); err == nil {
		health.Hostname = info.Hostname
		health.Platform = info.Platform
	}
	return c.JSON(http.StatusOK, health)
}

// @Summary List clouds
// @Description Lists the clouds this provider serves and the peers it federates with.
// @Tags clouds
// @Produce json
// @Success 200 {object} apimodel.CloudsResponse
// @Router /clouds [get]
func (s *Server) Clouds(c echo.Context) error {
	peers := s.services.Peers
	if peers == nil {
		peers = []string{}
	}
	return c.JSON(http.StatusOK, apimodel.CloudsResponse{
		ProviderID:   s.services.Connectors.LocalID(),
		DefaultCloud: s.services.DefaultCloud,
		Clouds:       s.services.Connectors.CloudNames(),
		Peers:        peers,
	})
}

// @Summary List images
// @Description Lists the images of a cloud, local or served by a peer.
// @Tags images
// @Produce json
// @Param provider query string false "Provider serving the cloud (defaults to this provider)."
// @Param cloud query string false "Cloud name (defaults to the provider's default cloud)."
// @Success 200 {object} apimodel.ImagesResponse
// @Failure 401 {object} apimodel.ErrorResponse
// @Failure 503 {object} apimodel.ErrorResponse
// @Router /images [get]
func (s *Server) ListImages(c echo.Context) error {
	provider, cloud := s.target(c)
	connector, err := s.services.Connectors.GetConnector(provider, cloud)
	if err != nil {
		return mapError(c, err)
	}

	images, err := connector.GetAllImages(c.Request().Context(), userFrom(c))
	if err != nil {
		return mapError(c, err)
	}
	if images == nil {
		images = []model.ImageSummary{}
	}
	return c.JSON(http.StatusOK, apimodel.ImagesResponse{ProviderID: provider, CloudName: cloud, Images: images})
}

// @Summary Get an image
// @Tags images
// @Produce json
// @Param id path string true "Image id."
// @Param provider query string false "Provider serving the cloud."
// @Param cloud query string false "Cloud name."
// @Success 200 {object} model.ImageInstance
// @Failure 404 {object} apimodel.ErrorResponse
// @Router /images/{id} [get]
func (s *Server) GetImage(c echo.Context) error {
	provider, cloud := s.target(c)
	connector, err := s.services.Connectors.GetConnector(provider, cloud)
	if err != nil {
		return mapError(c, err)
	}

	image, err := connector.GetImage(c.Request().Context(), c.Param("id"), userFrom(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, image)
}

// @Summary Get the user quota
// @Tags quota
// @Produce json
// @Param provider query string false "Provider serving the cloud."
// @Param cloud query string false "Cloud name."
// @Success 200 {object} apimodel.QuotaResponse
// @Failure 401 {object} apimodel.ErrorResponse
// @Router /quota [get]
func (s *Server) GetQuota(c echo.Context) error {
	provider, cloud := s.target(c)
	connector, err := s.services.Connectors.GetConnector(provider, cloud)
	if err != nil {
		return mapError(c, err)
	}

	quota, err := connector.GetUserQuota(c.Request().Context(), userFrom(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, apimodel.QuotaResponse{ProviderID: provider, CloudName: cloud, Quota: quota})
}

// @Summary List audit records
// @Description Lists the most recent audit records of the local connectors, newest first.
// @Tags audit
// @Produce json
// @Param limit query int false "Maximum number of records (default 50)."
// @Success 200 {object} apimodel.AuditResponse
// @Failure 400 {object} apimodel.ErrorResponse
// @Router /audit [get]
func (s *Server) ListAudit(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return mapError(c, model.NewInvalidParameterError("limit must be an integer"))
		}
		limit = n
	}

	response := apimodel.AuditResponse{Records: []apimodel.AuditRecord{}}
	if s.services.Auditor != nil {
		response.Enabled = s.services.Auditor.Enabled()
	}
	if s.services.Audit == nil {
		return c.JSON(http.StatusOK, response)
	}

	records, err := s.services.Audit.ListAuditableRequests(c.Request().Context(), limit)
	if err != nil {
		return mapError(c, model.WrapError(model.KindUnexpected, err))
	}
	for _, r := range records {
		response.Records = append(response.Records, apimodel.NewAuditRecord(r))
	}
	return c.JSON(http.StatusOK, response)
}

// @Summary Toggle auditing
// @Description Switches auditing of every local connector on or off.
// @Tags admin
// @Accept json
// @Produce json
// @Param settings body apimodel.AuditSettings true "Audit settings."
// @Success 200 {object} apimodel.AuditSettings
// @Failure 400 {object} apimodel.ErrorResponse
// @Router /admin/audit [put]
func (s *Server) UpdateAuditSettings(c echo.Context) error {
	if s.services.Auditor == nil {
		return mapError(c, model.NewError(model.KindNotImplemented, "auditing is not configured"))
	}

	var settings apimodel.AuditSettings
	if err := c.Bind(&settings); err != nil {
		return mapError(c, model.NewInvalidParameterError("malformed audit settings"))
	}

	s.services.Auditor.SetEnabled(settings.Enabled)
	slog.Info("Audit settings changed", "enabled", settings.Enabled)
	return c.JSON(http.StatusOK, apimodel.AuditSettings{Enabled: s.services.Auditor.Enabled()})
}

// target resolves the provider and cloud query parameters to their defaults.
func (s *Server) target(c echo.Context) (string, string) {
	provider := c.QueryParam("provider")
	if provider == "" {
		provider = s.services.Connectors.LocalID()
	}
	cloud := c.QueryParam("cloud")
	if cloud == "" && provider == s.services.Connectors.LocalID() {
		cloud = s.services.DefaultCloud
	}
	return provider, cloud
}

// userFrom reads the federation user of a CLI request. No user id means an
// anonymous request.
func userFrom(c echo.Context) *model.SystemUser {
	h := c.Request().Header
	id := h.Get(HeaderUserID)
	if id == "" {
		return nil
	}
	user := &model.SystemUser{
		ID:                 id,
		Name:               h.Get(HeaderUserName),
		IdentityProviderID: h.Get(HeaderIdentityProvider),
	}
	if token := h.Get(HeaderToken); token != "" {
		user.Attributes = map[string]string{"token": token}
	}
	return user
}

// mapError renders a federation error with the status of its kind.
func mapError(c echo.Context, err error) error {
	response := apimodel.NewErrorResponse(err)
	status := apimodel.StatusOf(response.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("API request failed", "path", c.Path(), "error", err)
	} else {
		slog.Debug("API request rejected", "path", c.Path(), "error", err)
	}
	return c.JSON(status, response)
}

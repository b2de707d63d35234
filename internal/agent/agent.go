// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package agent wires a skyfed provider together and runs it until it is told
// to stop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/platform-engineering-labs/skyfed"
	"github.com/platform-engineering-labs/skyfed/internal/api"
	"github.com/platform-engineering-labs/skyfed/internal/cloudconnector"
	"github.com/platform-engineering-labs/skyfed/internal/datastore"
	"github.com/platform-engineering-labs/skyfed/internal/imconc"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent"
	"github.com/platform-engineering-labs/skyfed/internal/intercomponent/facade"
	"github.com/platform-engineering-labs/skyfed/internal/logging"
	"github.com/platform-engineering-labs/skyfed/internal/orders"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/emulated"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin/mapper"
)

const shutdownTimeout = 10 * time.Second

// DefaultPidFile is where a running agent records its process id.
func DefaultPidFile() string {
	return filepath.Join(os.TempDir(), skyfed.Agent+".pid")
}

type Agent struct {
	cfg     *model.Config
	id      string
	pidFile string
	drivers []plugin.Driver
}

type Option func(*Agent)

func WithPidFile(path string) Option {
	return func(a *Agent) { a.pidFile = path }
}

// WithDriver registers an extra cloud driver next to the built-in ones.
func WithDriver(d plugin.Driver) Option {
	return func(a *Agent) { a.drivers = append(a.drivers, d) }
}

func New(cfg *model.Config, id string, opts ...Option) *Agent {
	a := &Agent{cfg: cfg, id: id, pidFile: DefaultPidFile()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run serves until ctx is done or the process receives SIGINT or SIGTERM.
func (a *Agent) Run(ctx context.Context) error {
	if _, err := os.Stat(a.pidFile); err == nil {
		return fmt.Errorf("agent appears to be already running (PID file %s exists)", a.pidFile)
	}
	if err := os.WriteFile(a.pidFile, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	defer a.cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var closers []func(context.Context) error
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				slog.Warn("Shutdown step failed", "error", err)
			}
		}
	}()

	res, err := api.NewResource(ctx, &a.cfg.OTel, a.id)
	if err != nil {
		return fmt.Errorf("failed to describe telemetry resource: %w", err)
	}

	// Tracing comes first: otelsql captures the tracer provider when the
	// datastore driver opens.
	closers = append(closers, api.SetupGlobalTracerProvider(ctx, &a.cfg.OTel, res))

	var otelHandler slog.Handler
	if a.cfg.OTel.Enabled {
		handler, provider, err := logging.NewOTelHandler(ctx, &a.cfg.OTel, res)
		if err != nil {
			slog.Warn("OTel log export disabled", "error", err)
		} else {
			otelHandler = handler
			closers = append(closers, provider.Shutdown)
		}
	}
	if err := logging.SetupAgentLogging(&a.cfg.Logging, otelHandler); err != nil {
		return err
	}

	metrics, err := api.SetupMetrics(ctx, &a.cfg.OTel, res)
	if err != nil {
		return err
	}
	closers = append(closers, metrics.Shutdown)

	slog.Info("Starting agent", "id", a.id, "provider", a.cfg.Provider.ID, "version", skyfed.Version)

	store, err := datastore.New(ctx, &a.cfg.Datastore, a.id)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	closers = append(closers, func(context.Context) error { return store.Close() })

	auditor := cloudconnector.NewAuditor(store)
	auditor.SetEnabled(a.cfg.Audit.Enabled)

	registry, err := a.registry()
	if err != nil {
		return err
	}

	sender := intercomponent.NewHTTPPacketSender(a.cfg.Provider.ID, a.cfg.Peers, nil)
	closers = append(closers, func(context.Context) error { return sender.Close() })

	factory := cloudconnector.NewFactory(a.cfg, registry, auditor, sender,
		cloudconnector.WithMeter(otel.Meter("skyfed/cloudconnector")))

	peers := make([]string, 0, len(a.cfg.Peers))
	for _, p := range a.cfg.Peers {
		peers = append(peers, p.ID)
	}

	server := api.NewServer(ctx, api.Services{
		Facade:       facade.NewRemoteFacade(factory, orders.NewHolder()),
		Connectors:   factory,
		Audit:        store,
		Auditor:      auditor,
		DefaultCloud: a.cfg.Provider.DefaultCloud,
		Peers:        peers,
	}, &a.cfg.Server, metrics.Handler())

	group := imconc.NewGroup().Add(server)
	group.Go(server.Start)

	slog.Info("Agent started", "clouds", strings.Join(factory.CloudNames(), ","), "peers", strings.Join(peers, ","))

	<-ctx.Done()
	slog.Info("Agent stopping", "cause", context.Cause(ctx))

	if !group.WaitTimeout(shutdownTimeout) {
		slog.Warn("Shutdown timed out, forcing stop")
		group.Stop(true)
	}
	return nil
}

func (a *Agent) registry() (*plugin.Registry, error) {
	registry := plugin.NewRegistry()
	drivers := append([]plugin.Driver{emulated.NewDriver()}, a.drivers...)
	for _, d := range drivers {
		if err := registry.RegisterDriver(d); err != nil {
			return nil, err
		}
	}
	if err := mapper.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// Stop signals the agent recorded in the pid file and waits for it to exit.
func (a *Agent) Stop() error {
	pidBytes, err := os.ReadFile(a.pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("agent is not running (no PID file found)")
		}
		return fmt.Errorf("failed to read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidBytes)))
	if err != nil {
		return fmt.Errorf("invalid pid file content: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			a.cleanup()
			return fmt.Errorf("agent is not running (stale PID file)")
		}
		return fmt.Errorf("failed to send signal to process: %w", err)
	}

	if a.waitForPidFileRemoval(shutdownTimeout) {
		return nil
	}

	slog.Warn("SIGTERM timeout, attempting SIGKILL")
	if err := process.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to SIGKILL process: %w", err)
	}

	// SIGKILL skips the agent's own cleanup.
	a.cleanup()
	return nil
}

func (a *Agent) cleanup() {
	if err := os.Remove(a.pidFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to remove pid file", "error", err)
	}
}

func (a *Agent) waitForPidFileRemoval(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(a.pidFile); errors.Is(err, os.ErrNotExist) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

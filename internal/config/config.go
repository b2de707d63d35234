// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package config loads the agent and CLI configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platform-engineering-labs/skyfed/internal/util"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

const (
	DefaultServerPort  = 49700
	DefaultPeerTimeout = 30 * time.Second
	DefaultServiceName = "skyfed"
)

// Default returns the configuration used for every key the file omits.
func Default() *model.Config {
	return &model.Config{
		Server: model.ServerConfig{
			Hostname: "localhost",
			Port:     DefaultServerPort,
		},
		Datastore: model.DatastoreConfig{
			DatastoreType: model.SqliteDatastore,
			Sqlite: model.SqliteConfig{
				FilePath: filepath.Join("~", DataDirectory, "skyfed.db"),
			},
			Postgres: model.PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "skyfed",
			},
		},
		Audit: model.AuditConfig{Enabled: true},
		Logging: model.LoggingConfig{
			FilePath:        filepath.Join("~", DataDirectory, "log", "skyfed.log"),
			FileLogLevel:    slog.LevelDebug,
			ConsoleLogLevel: slog.LevelInfo,
		},
		OTel: model.OTelConfig{
			ServiceName: DefaultServiceName,
			OTLP: model.OTLPConfig{
				Endpoint: "localhost:4317",
				Protocol: "grpc",
			},
			Prometheus: model.PrometheusConfig{Enabled: true},
		},
		Cli: model.CliConfig{
			API: model.APIConfig{
				URL:  "http://localhost",
				Port: DefaultServerPort,
			},
		},
	}
}

// Load reads the agent configuration at path over the defaults. An empty path
// means the default location, which may be absent.
func Load(path string) (*model.Config, error) {
	data, path, err := read(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// LoadCli only needs the cli section, so it skips the agent validation.
func LoadCli(path string) (*model.CliConfig, error) {
	data, path, err := read(path)
	if err != nil {
		return nil, err
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return &cfg.Cli, nil
}

func read(path string) ([]byte, string, error) {
	explicit := path != ""
	path = ConfigFile(path)

	data, err := os.ReadFile(util.ExpandHomePath(path))
	switch {
	case err == nil:
		return data, path, nil
	case errors.Is(err, os.ErrNotExist) && !explicit:
		slog.Debug("No configuration file, using defaults", "path", path)
		return nil, path, nil
	default:
		return nil, path, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}
}

// Parse decodes YAML over the defaults, expands home-relative paths and
// validates the result.
func Parse(data []byte) (*model.Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte) (*model.Config, error) {
	cfg := Default()

	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *model.Config) {
	if cfg.Provider.DefaultCloud == "" && len(cfg.Clouds) > 0 {
		cfg.Provider.DefaultCloud = cfg.Clouds[0].Name
	}
	for i := range cfg.Peers {
		if cfg.Peers[i].Timeout <= 0 {
			cfg.Peers[i].Timeout = DefaultPeerTimeout
		}
	}
	if cfg.OTel.ServiceName == "" {
		cfg.OTel.ServiceName = DefaultServiceName
	}

	cfg.Datastore.Sqlite.FilePath = util.ExpandHomePath(cfg.Datastore.Sqlite.FilePath)
	cfg.Logging.FilePath = util.ExpandHomePath(cfg.Logging.FilePath)
	cfg.Server.TLSCert = util.ExpandHomePath(cfg.Server.TLSCert)
	cfg.Server.TLSKey = util.ExpandHomePath(cfg.Server.TLSKey)
}

// Validate reports every problem of cfg at once.
func Validate(cfg *model.Config) error {
	var errs []error

	if cfg.Provider.ID == "" {
		errs = append(errs, errors.New("provider.id is required"))
	}

	clouds := make(map[string]struct{}, len(cfg.Clouds))
	for i, c := range cfg.Clouds {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("clouds[%d]: name is required", i))
			continue
		}
		if _, dup := clouds[c.Name]; dup {
			errs = append(errs, fmt.Errorf("clouds[%d]: duplicate cloud %q", i, c.Name))
		}
		clouds[c.Name] = struct{}{}
		if c.Driver == "" {
			errs = append(errs, fmt.Errorf("cloud %s: driver is required", c.Name))
		}
	}
	if cfg.Provider.DefaultCloud != "" {
		if _, ok := clouds[cfg.Provider.DefaultCloud]; !ok {
			errs = append(errs, fmt.Errorf("provider.defaultCloud %q is not a configured cloud", cfg.Provider.DefaultCloud))
		}
	}

	peers := make(map[string]struct{}, len(cfg.Peers))
	for i, p := range cfg.Peers {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("peers[%d]: id is required", i))
			continue
		case p.ID == cfg.Provider.ID:
			errs = append(errs, fmt.Errorf("peer %s: a provider cannot peer with itself", p.ID))
		case p.URL == "":
			errs = append(errs, fmt.Errorf("peer %s: url is required", p.ID))
		}
		if _, dup := peers[p.ID]; dup {
			errs = append(errs, fmt.Errorf("peers[%d]: duplicate peer %q", i, p.ID))
		}
		peers[p.ID] = struct{}{}
	}

	switch cfg.Datastore.DatastoreType {
	case model.SqliteDatastore:
		if cfg.Datastore.Sqlite.FilePath == "" {
			errs = append(errs, errors.New("datastore.sqlite.filePath is required"))
		}
	case model.PostgresDatastore:
		if cfg.Datastore.Postgres.Host == "" || cfg.Datastore.Postgres.Database == "" {
			errs = append(errs, errors.New("datastore.postgres needs a host and a database"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported datastore type %q", cfg.Datastore.DatastoreType))
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	if (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		errs = append(errs, errors.New("server.tlsCert and server.tlsKey go together"))
	}

	if cfg.OTel.OTLP.Protocol != "grpc" && cfg.OTel.OTLP.Protocol != "http" {
		errs = append(errs, fmt.Errorf("unsupported otel.otlp.protocol %q", cfg.OTel.OTLP.Protocol))
	}

	return errors.Join(errs...)
}

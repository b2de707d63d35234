// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"log/slog"
	"time"
)

const (
	SqliteDatastore   = "sqlite"
	PostgresDatastore = "postgres"
)

type ProviderConfig struct {
	// ID of this provider inside the federation.
	ID           string `yaml:"id"`
	DefaultCloud string `yaml:"defaultCloud"`
}

type MapperConfig struct {
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params"`
}

type CloudConfig struct {
	Name   string            `yaml:"name"`
	Driver string            `yaml:"driver"`
	Mapper MapperConfig      `yaml:"mapper"`
	Params map[string]string `yaml:"params"`
}

type PeerConfig struct {
	ID      string        `yaml:"id"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	TLSCert  string `yaml:"tlsCert"`
	TLSKey   string `yaml:"tlsKey"`
}

type DatastoreConfig struct {
	DatastoreType string         `yaml:"type"`
	Sqlite        SqliteConfig   `yaml:"sqlite"`
	Postgres      PostgresConfig `yaml:"postgres"`
}

type SqliteConfig struct {
	FilePath string `yaml:"filePath"`
}

type PostgresConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	Schema           string `yaml:"schema"`
	ConnectionParams string `yaml:"connectionParams"`
}

type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	FilePath        string     `yaml:"filePath"`
	FileLogLevel    slog.Level `yaml:"fileLogLevel"`
	ConsoleLogLevel slog.Level `yaml:"consoleLogLevel"`
}

type OTLPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"`
	Insecure bool   `yaml:"insecure"`
}

type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
}

type OTelConfig struct {
	Enabled     bool             `yaml:"enabled"`
	ServiceName string           `yaml:"serviceName"`
	OTLP        OTLPConfig       `yaml:"otlp"`
	Prometheus  PrometheusConfig `yaml:"prometheus"`
}

type APIConfig struct {
	URL  string `yaml:"url"`
	Port int    `yaml:"port"`
}

type CliConfig struct {
	API APIConfig `yaml:"api"`
}

type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Clouds    []CloudConfig   `yaml:"clouds"`
	Peers     []PeerConfig    `yaml:"peers"`
	Server    ServerConfig    `yaml:"server"`
	Datastore DatastoreConfig `yaml:"datastore"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
	OTel      OTelConfig      `yaml:"otel"`
	Cli       CliConfig       `yaml:"cli"`
}

// Cloud returns the configuration of a local cloud by name.
func (c *Config) Cloud(name string) (CloudConfig, bool) {
	for _, cloud := range c.Clouds {
		if cloud.Name == name {
			return cloud, true
		}
	}
	return CloudConfig{}, false
}

// CloudNames lists the configured local clouds in declaration order.
func (c *Config) CloudNames() []string {
	names := make([]string, 0, len(c.Clouds))
	for _, cloud := range c.Clouds {
		names = append(names, cloud.Name)
	}
	return names
}

func (c *Config) Peer(id string) (PeerConfig, bool) {
	for _, p := range c.Peers {
		if p.ID == id {
			return p, true
		}
	}
	return PeerConfig{}, false
}

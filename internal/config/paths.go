// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

const (
	ConfigFileName  = "skyfed.yaml"
	ConfigDirectory = ".config/skyfed"
	DataDirectory   = ".pel/skyfed"

	agentIDFile = "agent_id"
)

// EnvConfigFile overrides the default configuration location.
const EnvConfigFile = "SKYFED_CONFIG"

func homeRelative(dir string) string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homePath, dir)
}

func ConfigDir() string {
	return homeRelative(ConfigDirectory)
}

func DataDir() string {
	return homeRelative(DataDirectory)
}

func DefaultConfigFile() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// ConfigFile is the file a load of path reads: path itself, or the default
// file when path is empty.
func ConfigFile(path string) string {
	if path == "" {
		return DefaultConfigFile()
	}
	return path
}

// AgentID returns the identifier stamped on the audit records of this host,
// creating it in dataDir on first use. An empty dataDir means DataDir().
func AgentID(dataDir string) (string, error) {
	if dataDir == "" {
		dataDir = DataDir()
	}
	if dataDir == "" {
		return "", fmt.Errorf("failed to resolve skyfed data directory")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to ensure skyfed data directory: %w", err)
	}

	idFile := filepath.Join(dataDir, agentIDFile)
	data, err := os.ReadFile(idFile)
	if os.IsNotExist(err) {
		id := ksuid.New().String()
		if err := os.WriteFile(idFile, []byte(id), 0600); err != nil {
			return "", fmt.Errorf("failed to create ID file: %w", err)
		}
		return id, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to read ID file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

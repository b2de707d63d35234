// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package util holds the filesystem helpers shared by the agent and the CLI.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureFileFolderHierarchy creates the parent directories of a file path.
// Paths without a directory component need nothing.
func EnsureFileFolderHierarchy(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return EnsureFolderHierarchy(dir)
}

func EnsureFolderHierarchy(path string) error {
	return os.MkdirAll(path, 0755)
}

// ExpandHomePath replaces a leading "~" with the user's home directory. Only
// "~" and "~/..." are expanded; "~user" forms are left alone.
func ExpandHomePath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", path[1:])
	}
	return filepath.Join(home, path[1:])
}

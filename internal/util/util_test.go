// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandHomePath("~"))
	assert.Equal(t, filepath.Join(home, ".skyfed", "skyfed.db"), ExpandHomePath("~/.skyfed/skyfed.db"))
	assert.Equal(t, "/var/lib/skyfed.db", ExpandHomePath("/var/lib/skyfed.db"))
	assert.Equal(t, "~bob/x", ExpandHomePath("~bob/x"))
	assert.Equal(t, ":memory:", ExpandHomePath(":memory:"))
}

func TestEnsureFileFolderHierarchy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "skyfed.log")

	require.NoError(t, EnsureFileFolderHierarchy(path))
	assert.DirExists(t, filepath.Dir(path))
	assert.NoError(t, EnsureFileFolderHierarchy("skyfed.log"))
}

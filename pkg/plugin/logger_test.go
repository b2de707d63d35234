// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package plugin

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

func TestLoggerFromContext_WithLogger(t *testing.T) {
	logger := NewLogger(nil)
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, LoggerFromContext(ctx))
}

func TestLoggerFromContext_WithoutLogger(t *testing.T) {
	assert.IsType(t, noopLogger{}, LoggerFromContext(context.Background()))
}

func TestCloudLogger_CarriesCloudAndResourceType(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	CloudLogger("cloudA", model.ResourceTypeVolume).With("order", "o-1").Info("attached")

	out := buf.String()
	assert.Contains(t, out, "cloud=cloudA")
	assert.Contains(t, out, "resourceType=VOLUME")
	assert.Contains(t, out, "order=o-1")
}

func TestNoopLogger_DoesNotPanic(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("test")
	logger.Info("test", "key", "value")
	logger.Warn("test")
	logger.Error("test", "error", "some error")
	_ = logger.With("key", "value")
}

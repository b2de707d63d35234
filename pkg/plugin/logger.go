// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plugin

import (
	"context"
	"log/slog"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

// Logger is handed to plugins through the context. The connectors scope it to
// the cloud and resource type of every plugin call.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)
	With(attrs ...any) Logger
}

type loggerKey struct{}

// LoggerFromContext never returns nil.
func LoggerFromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return noopLogger{}
}

func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewLogger wraps l, or the default logger when l is nil.
func NewLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{logger: l}
}

// CloudLogger is the logger the connectors give to the plugins of a cloud.
func CloudLogger(cloudName string, resourceType model.ResourceType) Logger {
	return NewLogger(slog.Default().With("cloud", cloudName, "resourceType", string(resourceType)))
}

func (l *slogLogger) Debug(msg string, attrs ...any) { l.logger.Debug(msg, attrs...) }
func (l *slogLogger) Info(msg string, attrs ...any)  { l.logger.Info(msg, attrs...) }
func (l *slogLogger) Warn(msg string, attrs ...any)  { l.logger.Warn(msg, attrs...) }
func (l *slogLogger) Error(msg string, attrs ...any) { l.logger.Error(msg, attrs...) }

func (l *slogLogger) With(attrs ...any) Logger {
	return &slogLogger{logger: l.logger.With(attrs...)}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, attrs ...any) {}
func (noopLogger) Info(msg string, attrs ...any)  {}
func (noopLogger) Warn(msg string, attrs ...any)  {}
func (noopLogger) Error(msg string, attrs ...any) {}
func (noopLogger) With(attrs ...any) Logger       { return noopLogger{} }

// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/platform-engineering-labs/skyfed/internal/util"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

const NoLoggingLevel = slog.Level(100) // A level higher than any standard level to disable logging

// SetupInitialLogging is in effect until the configuration is loaded.
func SetupInitialLogging() {
	slog.SetDefault(slog.New(consoleHandler(os.Stdout, slog.LevelDebug)))
	redirectStdLog()
}

// SetupCliLogging keeps the terminal for command output; the log goes to a
// rotated file only.
func SetupCliLogging(logFilePath string) {
	if logFilePath == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	if err := util.EnsureFileFolderHierarchy(logFilePath); err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}

	slog.SetDefault(slog.New(NewMultiLevelHandler(fileHandler(logFilePath, slog.LevelDebug))))
	redirectStdLog()
}

// SetupAgentLogging fans out to the rotated log file, the console unless its
// level is NoLoggingLevel, and otelHandler when non-nil.
func SetupAgentLogging(cfg *model.LoggingConfig, otelHandler slog.Handler) error {
	if err := util.EnsureFileFolderHierarchy(cfg.FilePath); err != nil {
		return err
	}

	handlers := []slog.Handler{fileHandler(cfg.FilePath, cfg.FileLogLevel)}
	if cfg.ConsoleLogLevel != NoLoggingLevel {
		handlers = append(handlers, consoleHandler(os.Stdout, cfg.ConsoleLogLevel))
	}
	if otelHandler != nil {
		handlers = append(handlers, otelHandler)
	}

	slog.SetDefault(slog.New(NewMultiLevelHandler(handlers...)))
	redirectStdLog()
	return nil
}

func consoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}

func fileHandler(path string, level slog.Level) slog.Handler {
	lumber := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		Compress:   true,
	}
	return tint.NewHandler(lumber, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})
}

// overwrite standard log so it's always redirected to slog, in case some deep dep is using it
func redirectStdLog() {
	lw := &slogWriter{}
	log.Default().SetOutput(lw)
	log.SetFlags(0)
}

// MultiLevelHandler hands every record to each handler whose level admits it.
type MultiLevelHandler struct {
	handlers []slog.Handler
}

func NewMultiLevelHandler(handlers ...slog.Handler) *MultiLevelHandler {
	return &MultiLevelHandler{handlers: handlers}
}

func (h *MultiLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *MultiLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithAttrs(attrs) })
}

func (h *MultiLevelHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(handler slog.Handler) slog.Handler { return handler.WithGroup(name) })
}

func (h *MultiLevelHandler) derive(fn func(slog.Handler) slog.Handler) *MultiLevelHandler {
	derived := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		derived[i] = fn(handler)
	}
	return &MultiLevelHandler{handlers: derived}
}

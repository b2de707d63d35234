// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"log/slog"
	"strings"
)

var stdLogLevels = []struct {
	prefix string
	level  slog.Level
}{
	{"ERROR", slog.LevelError},
	{"WARN", slog.LevelWarn},
	{"INFO", slog.LevelInfo},
	{"DEBUG", slog.LevelDebug},
}

// slogWriter turns stdlib log lines into slog records, honoring a leading
// level word such as "WARN:" or "[ERROR]".
type slogWriter struct{}

func (w *slogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), "\n")
	level := slog.LevelDebug

	trimmed := strings.TrimLeft(msg, "[")
	for _, l := range stdLogLevels {
		if rest, ok := strings.CutPrefix(trimmed, l.prefix); ok {
			level = l.level
			msg = strings.TrimLeft(rest, "]: ")
			break
		}
	}

	slog.Log(context.Background(), level, msg)
	return len(p), nil
}

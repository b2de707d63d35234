// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	glog "github.com/labstack/gommon/log"
)

var echoLevels = map[glog.Lvl]slog.Level{
	glog.DEBUG: slog.LevelDebug,
	glog.INFO:  slog.LevelInfo,
	glog.WARN:  slog.LevelWarn,
	glog.ERROR: slog.LevelError,
	glog.OFF:   NoLoggingLevel,
}

// EchoLogger implements echo.Logger on top of slog. Output, prefix and header
// are owned by the slog handlers and ignored here.
type EchoLogger struct {
	Logger *slog.Logger
	level  glog.Lvl
}

func NewEchoLogger() *EchoLogger {
	return &EchoLogger{
		Logger: slog.Default().With("component", "api"),
		level:  glog.DEBUG,
	}
}

func (l *EchoLogger) emit(lvl glog.Lvl, msg string, args ...any) {
	if lvl < l.level {
		return
	}
	level, ok := echoLevels[lvl]
	if !ok {
		level = slog.LevelError
	}
	l.Logger.Log(context.Background(), level, msg, args...)
}

func (l *EchoLogger) Output() io.Writer   { return io.Discard }
func (l *EchoLogger) SetOutput(io.Writer) {}
func (l *EchoLogger) Prefix() string      { return "" }
func (l *EchoLogger) SetPrefix(string)    {}
func (l *EchoLogger) SetHeader(string)    {}
func (l *EchoLogger) Level() glog.Lvl     { return l.level }
func (l *EchoLogger) SetLevel(v glog.Lvl) { l.level = v }

func (l *EchoLogger) Print(i ...any)                 { l.emit(glog.INFO, fmt.Sprint(i...)) }
func (l *EchoLogger) Printf(format string, a ...any) { l.emit(glog.INFO, fmt.Sprintf(format, a...)) }
func (l *EchoLogger) Printj(j glog.JSON)             { l.emit(glog.INFO, "json", "data", j) }

func (l *EchoLogger) Debug(i ...any)                 { l.emit(glog.DEBUG, fmt.Sprint(i...)) }
func (l *EchoLogger) Debugf(format string, a ...any) { l.emit(glog.DEBUG, fmt.Sprintf(format, a...)) }
func (l *EchoLogger) Debugj(j glog.JSON)             { l.emit(glog.DEBUG, "json", "data", j) }

func (l *EchoLogger) Info(i ...any)                 { l.emit(glog.INFO, fmt.Sprint(i...)) }
func (l *EchoLogger) Infof(format string, a ...any) { l.emit(glog.INFO, fmt.Sprintf(format, a...)) }
func (l *EchoLogger) Infoj(j glog.JSON)             { l.emit(glog.INFO, "json", "data", j) }

func (l *EchoLogger) Warn(i ...any)                 { l.emit(glog.WARN, fmt.Sprint(i...)) }
func (l *EchoLogger) Warnf(format string, a ...any) { l.emit(glog.WARN, fmt.Sprintf(format, a...)) }
func (l *EchoLogger) Warnj(j glog.JSON)             { l.emit(glog.WARN, "json", "data", j) }

func (l *EchoLogger) Error(i ...any)                 { l.emit(glog.ERROR, fmt.Sprint(i...)) }
func (l *EchoLogger) Errorf(format string, a ...any) { l.emit(glog.ERROR, fmt.Sprintf(format, a...)) }
func (l *EchoLogger) Errorj(j glog.JSON)             { l.emit(glog.ERROR, "json", "data", j) }

func (l *EchoLogger) Fatal(i ...any) {
	l.Logger.Error(fmt.Sprint(i...))
	os.Exit(1)
}

func (l *EchoLogger) Fatalf(format string, a ...any) {
	l.Logger.Error(fmt.Sprintf(format, a...))
	os.Exit(1)
}

func (l *EchoLogger) Fatalj(j glog.JSON) {
	l.Logger.Error("json", "data", j)
	os.Exit(1)
}

func (l *EchoLogger) Panic(i ...any) {
	s := fmt.Sprint(i...)
	l.Logger.Error(s)
	panic(s)
}

func (l *EchoLogger) Panicf(format string, a ...any) {
	s := fmt.Sprintf(format, a...)
	l.Logger.Error(s)
	panic(s)
}

func (l *EchoLogger) Panicj(j glog.JSON) {
	l.Logger.Error("json", "data", j)
	panic(j)
}

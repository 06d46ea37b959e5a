// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the leveled, structured logging used across
// furumi. It wraps log/slog with two handlers (text and JSON) selected by
// configuration, five severity levels that don't map 1:1 onto slog's
// defaults, and an optional async, rotating file sink.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/house-of-vanity/furumi/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// The levels furumi uses, ordered so that higher means "more severe".
// Debug/Info/Warn/Error take slog's built-in values; Trace sits one step
// below Debug, and Off one step above Error so that it silences everything.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = -4
	LevelInfo  slog.Level = 0
	LevelWarn  slog.Level = 4
	LevelError slog.Level = 8
	LevelOff   slog.Level = 12
)

var severityToLevel = map[cfg.LogSeverity]slog.Level{
	cfg.TRACE:   LevelTrace,
	cfg.DEBUG:   LevelDebug,
	cfg.INFO:    LevelInfo,
	cfg.WARNING: LevelWarn,
	cfg.ERROR:   LevelError,
	cfg.OFF:     LevelOff,
}

type loggerFactory struct {
	mu sync.Mutex

	file      *lumberjack.Logger
	async     *AsyncLogger
	sysWriter io.Writer // non-nil only in tests, to capture output directly

	format          string
	level           cfg.LogSeverity
	logRotateConfig cfg.LogRotateConfig
}

var (
	defaultLoggerFactory = &loggerFactory{
		level:           cfg.INFO,
		format:          "json",
		logRotateConfig: cfg.DefaultLogRotateConfig(),
	}
	programLevel  = new(slog.LevelVar)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
	loggerMu      sync.RWMutex
)

// InitLogFile wires the logger according to cfg, rotating through
// lumberjack when FilePath is set and otherwise writing to stderr. It must
// be called once, as early in process startup as possible, before any other
// component logs.
func InitLogFile(logging cfg.LoggingConfig) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	factory := &loggerFactory{
		format:          logging.Format,
		level:           logging.Severity,
		logRotateConfig: logging.LogRotateConfig,
	}

	var out io.Writer = os.Stderr
	if logging.FilePath != "" {
		factory.file = &lumberjack.Logger{
			Filename: logging.FilePath.String(),
			MaxSize:  logging.MaxFileSizeMB,
			MaxBackups: logging.BackupFileCount,
			Compress:   logging.Compress,
		}
		factory.async = NewAsyncLogger(factory.file, 10000)
		out = factory.async
	}

	setLoggingLevel(string(factory.level), programLevel)
	defaultLoggerFactory = factory
	defaultLogger = slog.New(factory.createJsonOrTextHandler(out, programLevel, ""))

	return nil
}

// SetLogFormat swaps the active handler's format ("text" or "json",
// defaulting to json for anything else) without touching the destination
// writer or level.
func SetLogFormat(format string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	defaultLoggerFactory.format = format

	var out io.Writer = os.Stderr
	if defaultLoggerFactory.async != nil {
		out = defaultLoggerFactory.async
	} else if defaultLoggerFactory.sysWriter != nil {
		out = defaultLoggerFactory.sysWriter
	}

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(out, programLevel, ""))
}

func setLoggingLevel(level string, v *slog.LevelVar) {
	if l, ok := severityToLevel[cfg.LogSeverity(level)]; ok {
		v.Set(l)
		return
	}

	v.Set(LevelInfo)
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if f.format == "text" {
		return &textHandler{w: w, opts: opts, level: level, prefix: prefix}
	}

	return &jsonHandler{w: w, opts: opts, level: level, prefix: prefix}
}

func logf(level slog.Level, format string, v ...interface{}) {
	loggerMu.RLock()
	l := defaultLogger
	loggerMu.RUnlock()

	l.Log(nil, level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...interface{}) { logf(LevelTrace, format, v...) }
func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }

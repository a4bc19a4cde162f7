// Copyright (c) 2026 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides the logger shared by every bps channel and service.
// The default logger is powered by go.uber.org/zap and can be replaced by any
// implementation of Logger through bps.WithLogger or SetDefaultLoggerAndFlusher.
//
// The environment variable `BPS_LOGGING_LEVEL` selects the level, either by name
// ("debug", "info", "warn", "error") or by the zapcore integer value.
// The environment variable `BPS_LOGGING_FILE` redirects logs into a rotated local file.
package logging

import (
	"errors"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Flusher flushes any buffered log entries to the underlying writer.
type Flusher = func() error

// Level is the alias of zapcore.Level.
type Level = zapcore.Level

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel = zapcore.DebugLevel
	// InfoLevel is the default logging priority.
	InfoLevel = zapcore.InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel = zapcore.WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel = zapcore.ErrorLevel
)

var (
	mu                  sync.RWMutex
	defaultLogger       Logger
	defaultLoggingLevel Level
	defaultFlusher      Flusher
)

func init() {
	if lvl := os.Getenv("BPS_LOGGING_LEVEL"); len(lvl) > 0 {
		level, err := ParseLevel(lvl)
		if err != nil {
			panic("invalid BPS_LOGGING_LEVEL, " + err.Error())
		}
		defaultLoggingLevel = level
	}

	if fileName := os.Getenv("BPS_LOGGING_FILE"); len(fileName) > 0 {
		var err error
		defaultLogger, defaultFlusher, err = CreateLoggerAsLocalFile(fileName, defaultLoggingLevel)
		if err != nil {
			panic("invalid BPS_LOGGING_FILE, " + err.Error())
		}
		return
	}
	defaultLogger, defaultFlusher = NewConsoleLogger(defaultLoggingLevel)
}

// ParseLevel accepts a level name or its zapcore integer value.
func ParseLevel(s string) (Level, error) {
	if n, err := strconv.ParseInt(s, 10, 8); err == nil {
		return Level(n), nil
	}
	return zapcore.ParseLevel(s)
}

type prefixEncoder struct {
	zapcore.Encoder

	prefix  string
	bufPool buffer.Pool
}

func (e *prefixEncoder) Clone() zapcore.Encoder {
	return &prefixEncoder{Encoder: e.Encoder.Clone(), prefix: e.prefix, bufPool: e.bufPool}
}

func (e *prefixEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	logEntry, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer logEntry.Free()

	buf := e.bufPool.Get()
	buf.AppendString(e.prefix)
	buf.AppendByte(' ')
	if _, err = buf.Write(logEntry.Bytes()); err != nil {
		buf.Free()
		return nil, err
	}
	return buf, nil
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return &prefixEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		prefix:  "[bps]",
		bufPool: buffer.NewPool(),
	}
}

// NewConsoleLogger builds a development logger writing to stdout at the given level.
func NewConsoleLogger(level Level) (Logger, Flusher) {
	core := zapcore.NewCore(newEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stdout), level)
	zapLogger := zap.New(core,
		zap.Development(),
		zap.AddCaller(),
		zap.AddStacktrace(ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	return zapLogger.Sugar(), zapLogger.Sync
}

// CreateLoggerAsLocalFile sets up a logger writing into a rotated local file.
func CreateLoggerAsLocalFile(localFilePath string, logLevel Level) (logger Logger, flush Flusher, err error) {
	if len(localFilePath) == 0 {
		return nil, nil, errors.New("invalid local logger path")
	}

	// lumberjack.Logger is already safe for concurrent use.
	lumberJackLogger := &lumberjack.Logger{
		Filename:   localFilePath,
		MaxSize:    64, // megabytes
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	levelEnabler := zap.LevelEnablerFunc(func(level Level) bool {
		return level >= logLevel
	})
	core := zapcore.NewCore(newEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(lumberJackLogger), levelEnabler)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(ErrorLevel))
	return zapLogger.Sugar(), zapLogger.Sync, nil
}

// GetDefaultLogger returns the default logger.
func GetDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefaultLoggerAndFlusher replaces the default logger and its flusher,
// the previous flusher is run before the swap.
func SetDefaultLoggerAndFlusher(logger Logger, flusher Flusher) {
	mu.Lock()
	defer mu.Unlock()
	if defaultFlusher != nil {
		_ = defaultFlusher()
	}
	defaultLogger, defaultFlusher = logger, flusher
}

// LogLevel tells what the default logging level is.
func LogLevel() string {
	return defaultLoggingLevel.String()
}

// Cleanup flushes the default logger.
func Cleanup() {
	mu.RLock()
	defer mu.RUnlock()
	if defaultFlusher != nil {
		_ = defaultFlusher()
	}
}

// Error prints err if it's not nil.
func Error(err error) {
	if err != nil {
		GetDefaultLogger().Errorf("error occurs during runtime, %v", err)
	}
}

// Debugf logs messages at DEBUG level.
func Debugf(format string, args ...any) {
	GetDefaultLogger().Debugf(format, args...)
}

// Infof logs messages at INFO level.
func Infof(format string, args ...any) {
	GetDefaultLogger().Infof(format, args...)
}

// Warnf logs messages at WARN level.
func Warnf(format string, args ...any) {
	GetDefaultLogger().Warnf(format, args...)
}

// Errorf logs messages at ERROR level.
func Errorf(format string, args ...any) {
	GetDefaultLogger().Errorf(format, args...)
}

// Logger is used for logging formatted messages.
type Logger interface {
	// Debugf logs messages at DEBUG level.
	Debugf(format string, args ...any)
	// Infof logs messages at INFO level.
	Infof(format string, args ...any)
	// Warnf logs messages at WARN level.
	Warnf(format string, args ...any)
	// Errorf logs messages at ERROR level.
	Errorf(format string, args ...any)
	// Fatalf logs messages at FATAL level.
	Fatalf(format string, args ...any)
}

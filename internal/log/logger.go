// Copyright 2025 Tom Barlow
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


// Package log builds the slog loggers used by flowgen and the generator.
//
// Levels and formats come from the .flowgen.yaml log section, then from
// the environment (FLOWGEN_DEBUG, FLOWGEN_LOG_LEVEL, LOG_LEVEL, LOG_FORMAT,
// LOG_SOURCE), then from the -v and -q flags.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Format selects the slog handler.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// LevelTrace sits below debug and is used for per-step detail while a
// workflow is built.
const LevelTrace = slog.Level(-8)

// Field keys shared by the generator and the CLI.
const (
	WorkflowKey = "workflow"
	FileKey     = "file"
	// ActionKey holds what happened to a file: write, unchanged, remove, stale.
	ActionKey = "action"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error.
	Level  string
	Format Format
	// Output defaults to os.Stderr when nil.
	Output    io.Writer
	AddSource bool
}

// DefaultConfig logs text at info level to stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: FormatText, Output: os.Stderr}
}

// FromEnv returns DefaultConfig adjusted by the environment. FLOWGEN_DEBUG
// (true or 1) forces debug with source locations and hides both level
// variables; otherwise FLOWGEN_LOG_LEVEL beats LOG_LEVEL.
func FromEnv() *Config {
	cfg := DefaultConfig()

	switch debug := os.Getenv("FLOWGEN_DEBUG"); debug {
	case "true", "1":
		cfg.Level = "debug"
		cfg.AddSource = true
	case "":
		if level := firstEnv("FLOWGEN_LOG_LEVEL", "LOG_LEVEL"); level != "" {
			cfg.Level = strings.ToLower(level)
		}
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	cfg.AddSource = cfg.AddSource || os.Getenv("LOG_SOURCE") == "1"
	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// New returns a logger for cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: cfg.AddSource}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// parseLevel maps a level name to its slog level. Unknown names are info.
func parseLevel(level string) slog.Level {
	levels := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

func WithWorkflow(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String(WorkflowKey, name))
}

func String(key, value string) slog.Attr { return slog.String(key, value) }
func Int(key string, value int) slog.Attr { return slog.Int(key, value) }
func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }
func Error(err error) slog.Attr { return slog.Any("error", err) }

// Duration records d in milliseconds under key+"_ms".
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Int64(key+"_ms", d.Milliseconds())
}

// Trace logs at LevelTrace, skipping attribute evaluation when disabled.
func Trace(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if logger.Enabled(ctx, LevelTrace) {
		logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

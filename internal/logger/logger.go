// Package logger provides configurable logging for the engine, built on
// log/slog with Printf-style wrappers and optional tag filtering.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const tagKey = "tag"

// Config holds logger settings.
type Config struct {
	// LogLevel is the minimum level to log ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
	// LogFilePath is the output file. Empty or "-" means stderr.
	LogFilePath string `toml:"log_file"`
	// EnabledTags only logs tagged messages with these tags (if non-empty).
	EnabledTags []string `toml:"enabled_tags"`
	// DisabledTags drops messages with these tags. Overrides EnabledTags.
	DisabledTags []string `toml:"disabled_tags"`
}

var (
	defaultLogger *slog.Logger
	logLevel      *slog.LevelVar
	initOnce      sync.Once
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" {
			set[strings.ToLower(item)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// tagFilterHandler drops records whose tag attribute is filtered out.
type tagFilterHandler struct {
	base     slog.Handler
	enabled  map[string]struct{}
	disabled map[string]struct{}
}

func (h *tagFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *tagFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	var tag string
	var tagged bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = strings.ToLower(a.Value.String())
			tagged = true
			return false
		}
		return true
	})
	if tagged {
		if _, drop := h.disabled[tag]; drop {
			return nil
		}
		if h.enabled != nil {
			if _, keep := h.enabled[tag]; !keep {
				return nil
			}
		}
	}
	return h.base.Handle(ctx, r)
}

func (h *tagFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tagFilterHandler{base: h.base.WithAttrs(attrs), enabled: h.enabled, disabled: h.disabled}
}

func (h *tagFilterHandler) WithGroup(name string) slog.Handler {
	return &tagFilterHandler{base: h.base.WithGroup(name), enabled: h.enabled, disabled: h.disabled}
}

// Init initializes the package logger from config. Safe to call once;
// later calls are no-ops.
func Init(cfg Config, output io.Writer) {
	initOnce.Do(func() {
		if output == nil {
			output = io.Discard
		}
		logLevel = new(slog.LevelVar)
		logLevel.Set(parseLevel(cfg.LogLevel))

		opts := slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.SourceKey {
					if source, ok := a.Value.Any().(*slog.Source); ok && source != nil {
						source.File = filepath.Base(source.File)
					}
				}
				if a.Key == slog.TimeKey {
					a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
				}
				return a
			},
		}
		base := slog.NewTextHandler(output, &opts)
		handler := &tagFilterHandler{
			base:     base,
			enabled:  sliceToSet(cfg.EnabledTags),
			disabled: sliceToSet(cfg.DisabledTags),
		}
		defaultLogger = slog.New(handler)
	})
}

// ensureInitialized installs a discard logger if Init was never called.
func ensureInitialized() {
	initOnce.Do(func() {
		logLevel = new(slog.LevelVar)
		logLevel.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
	})
}

// logAtLevel logs a formatted record at level, capturing the caller of the
// public wrapper (three frames up).
func logAtLevel(level slog.Level, format string, args ...interface{}) {
	ensureInitialized()
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	_ = defaultLogger.Handler().Handle(context.Background(), r)
}

func logTagged(level slog.Level, tag, format string, args ...interface{}) {
	ensureInitialized()
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	r.AddAttrs(slog.String(tagKey, tag))
	_ = defaultLogger.Handler().Handle(context.Background(), r)
}

// Debugf logs a debug message using Printf-style formatting.
func Debugf(format string, args ...interface{}) {
	logAtLevel(slog.LevelDebug, format, args...)
}

// DebugTagf logs a tagged debug message, filterable via config.
func DebugTagf(tag, format string, args ...interface{}) {
	logTagged(slog.LevelDebug, tag, format, args...)
}

// Infof logs an info message using Printf-style formatting.
func Infof(format string, args ...interface{}) {
	logAtLevel(slog.LevelInfo, format, args...)
}

// Warnf logs a warning message using Printf-style formatting.
func Warnf(format string, args ...interface{}) {
	logAtLevel(slog.LevelWarn, format, args...)
}

// Errorf logs an error message using Printf-style formatting.
func Errorf(format string, args ...interface{}) {
	logAtLevel(slog.LevelError, format, args...)
}

// Fatalf logs an error message then exits.
func Fatalf(format string, args ...interface{}) {
	logAtLevel(slog.LevelError, format, args...)
	os.Exit(1)
}

// Get retrieves the configured slog logger.
func Get() *slog.Logger {
	ensureInitialized()
	return defaultLogger
}

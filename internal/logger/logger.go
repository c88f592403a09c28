// Package logger provides a centralized slog-based logger with level and format control.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/evgenyka/arh-import-stack/internal/config"
)

const (
	EnvLogLevel  = "ARH_LOG_LEVEL"
	EnvLogFormat = "ARH_LOG_FORMAT"
)

// Init initializes the global logger based on environment variables.
// Priority: ARH_LOG_LEVEL > LOG_LEVEL > Default ("info")
// ARH_LOG_FORMAT: text, json (default: text)
func Init() *slog.Logger {
	levelStr := os.Getenv(EnvLogLevel)
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	formatStr := os.Getenv(EnvLogFormat)
	if formatStr == "" {
		formatStr = config.DefaultLogFormat
	}

	l := New(os.Stderr, levelStr, formatStr)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if s == "" {
			return parseLevel(config.DefaultLogLevel)
		}
		return slog.LevelInfo
	}
}

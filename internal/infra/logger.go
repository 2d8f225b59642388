package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new slog.Logger with log rotation support
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(logWriter(cfg), &slog.HandlerOptions{
		Level: ParseLevel(cfg.Logging.Level),
	}))
}

// logWriter tees stdout into a rotating file when a log directory is set.
func logWriter(cfg *Config) io.Writer {
	if cfg.Logging.Dir == "" {
		return os.Stdout
	}
	if err := os.MkdirAll(cfg.Logging.Dir, 0755); err != nil {
		// Fallback to stderr if directory creation fails
		return os.Stderr
	}

	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logging.Dir, cfg.Logging.File),
		MaxSize:    cfg.Logging.MaxSizeMB, // Megabytes
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays, // Days
		Compress:   cfg.Logging.Compress,
	}

	// Multi-writer: Log to both file and stdout
	return io.MultiWriter(os.Stdout, fileLogger)
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

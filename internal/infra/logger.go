package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the service logger: JSON records to stdout and a rotating
// file, tagged with the service identity so aggregated streams stay
// attributable. Level and rotation limits come from the logging config.
func NewLogger(cfg *Config) *slog.Logger {
	handler := slog.NewJSONHandler(logWriter(cfg), &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	})
	return slog.New(handler).With(
		slog.String("service", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)
}

func logWriter(cfg *Config) io.Writer {
	if err := os.MkdirAll(cfg.Logging.Dir, 0755); err != nil {
		// A bad log dir must not take the service down with it.
		return os.Stderr
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logging.Dir, "shop.log"),
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		Compress:   true,
	})
}

func parseLevel(level string) slog.Level {
	switch level {
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

package infra

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	cfg := &Config{}
	cfg.App.Name = "shop-test"
	cfg.Logging.Level = "debug"
	cfg.Logging.Dir = t.TempDir()
	cfg.Logging.MaxSizeMB = 1
	cfg.Logging.MaxBackups = 1
	cfg.Logging.MaxAgeDays = 1

	logger := NewLogger(cfg)
	logger.Info("rotation target check")

	if _, err := os.Stat(filepath.Join(cfg.Logging.Dir, "shop.log")); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

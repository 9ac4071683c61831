package config

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

func ensureLogDir(path string) error {
	dir := path
	if filepath.Ext(path) != "" {
		dir = filepath.Dir(path)
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger: stdout plus a rotated log file.
// When the log directory cannot be created it falls back to stdout only.
func NewLogger(cfg LogConfig) *slog.Logger {
	logPath := strings.TrimSpace(cfg.Path)
	if logPath == "" {
		logPath = "logs/app.log"
	}

	var out io.Writer = os.Stdout
	if err := ensureLogDir(logPath); err != nil {
		fmt.Printf("failed to create log directory: %v\n", err)
	} else {
		if filepath.Ext(logPath) == "" {
			logPath = filepath.Join(logPath, "app.log")
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})
	logger := slog.New(handler)

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return logger
}

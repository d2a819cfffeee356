package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// parseOutput maps LOG_OUTPUT to a writer. STDOUT and STDERR select the
// process streams; anything else is a file path rotated by lumberjack.
func parseOutput(cfg Options) io.Writer {
	switch strings.ToUpper(cfg.Output) {
	case "", "STDOUT":
		return os.Stdout
	case "STDERR":
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package logger настраивает структурное логирование процесса.
package logger

import (
	"log/slog"
	"os"
)

// New возвращает JSON-логгер; уровень берется из LOG_LEVEL (default info).
func New() *slog.Logger {
	level := slog.LevelInfo
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(env)); err == nil {
			level = parsed
		}
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// NewWithLevel возвращает JSON-логгер с явным уровнем из конфига
// ("debug", "info", "warn", "error"); нераспознанный уровень дает info.
func NewWithLevel(levelText string) *slog.Logger {
	level := slog.LevelInfo
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(levelText)); err == nil {
		level = parsed
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

package logger

import (
	"log/slog"
	"os"
)

// New returns JSON logger writing to stderr. The level comes from the
// config; LOG_LEVEL overrides it. Logs go to stderr so they never mix
// with command output on stdout.
func New(level string) *slog.Logger {
	parsed := slog.LevelInfo
	if level != "" {
		_ = parsed.UnmarshalText([]byte(level))
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		var fromEnv slog.Level
		if err := fromEnv.UnmarshalText([]byte(env)); err == nil {
			parsed = fromEnv
		}
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parsed})
	return slog.New(h)
}

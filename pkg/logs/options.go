package logs

import (
	"fmt"
	"log/slog"
	"strings"
)

// Options select the log level and whether records also go to the systemd
// journal.
type Options struct {
	Level   slog.Level
	Journal bool
}

func (Module) Options() Options {
	return Options{
		Level: slog.LevelWarn,
	}
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
}

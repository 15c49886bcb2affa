package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON installs a JSON slog logger tagged with the process name as the
// default logger and returns it.
func SetupJSON(level slog.Level, process string) *slog.Logger {
	logger := NewJSON(os.Stdout, level).With(slog.String("process", process))
	slog.SetDefault(logger)

	return logger
}

// NewJSON builds a JSON logger writing to w.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

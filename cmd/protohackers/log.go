package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/portbound/protohackers/internal/config"
)

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(f *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}

func logLevel(conf config.Config) (slog.Level, error) {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug, nil
	}
	return conf.Level()
}

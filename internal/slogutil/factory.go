package slogutil

import (
	"io"
	"log/slog"
	"os"

	"finch/internal/config"
)

// Setup builds the process logger from the logging configuration. Records go to stderr and,
// when cfg.File is set, also to a rotating log file. verbosity lowers the configured level one
// step per -v flag. The returned closer releases the log file and is never nil.
func Setup(cfg config.LoggingConfig, verbosity int, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}

	base, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	level := LevelFromVerbosity(base, verbosity)

	console := newHandler(cfg.Format, stderr, level)
	if cfg.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	rf, err := OpenRotatingFile(cfg.File, ParseSize(cfg.MaxSize), cfg.MaxBackups)
	if err != nil {
		return nil, nopCloser{}, err
	}

	file := newHandler(cfg.Format, rf, level)
	return slog.New(NewTeeHandler(console, file)), rf, nil
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return NewLineHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Package logging builds the charmbracelet loggers used across blockfall.
//
// Interactive commands cannot log to the terminal while Bubble Tea owns it,
// so they write to a size-rotated file instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vovakirdan/blockfall/internal/config"
)

// ParseLevel maps a config level name to a log level. Empty means info.
func ParseLevel(name string) (log.Level, error) {
	if strings.TrimSpace(name) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("logging: %w", err)
	}
	return lvl, nil
}

// NewFile returns a logger writing to the rotated file named in cfg.
// The returned closer flushes and closes the file.
func NewFile(cfg config.LogConfig, prefix string) (*log.Logger, io.Closer, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if cfg.File == "" {
		return Discard(), io.NopCloser(nil), nil
	}

	path := config.ExpandHome(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: cannot create directory for %s: %w", path, err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     7, // days
	}
	return New(lj, prefix, lvl), lj, nil
}

// NewStderr returns a logger for non-interactive commands such as serve.
func NewStderr(level, prefix string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return New(os.Stderr, prefix, lvl), nil
}

// New returns a timestamped logger on w.
func New(w io.Writer, prefix string, lvl log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

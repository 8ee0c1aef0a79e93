// Package logging provides component loggers for brewcat, built on
// charmbracelet/log. The CLI logs to stderr; the watch daemon logs to a file.
//
//	if err := logging.Init(logging.Config{Level: "debug"}); err != nil {
//		return err
//	}
//	defer logging.Close()
//
//	logging.Get("scanner").Info("scan started", "root", root)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// ParseLevel parses a level name into a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the minimum level (debug, info, warn, error).
	Level string

	// Path is a log file. Empty means stderr.
	Path string
}

type state struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	level   log.Level
	loggers map[string]*log.Logger
}

var global = &state{
	out:     os.Stderr,
	level:   log.WarnLevel,
	loggers: make(map[string]*log.Logger),
}

// Init applies cfg to every logger, including ones handed out before Init.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	var out io.Writer = os.Stderr
	var file *os.File
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		out = file
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file != nil {
		_ = global.file.Close()
	}
	global.out = out
	global.file = file
	global.level = level

	for _, logger := range global.loggers {
		logger.SetOutput(out)
		logger.SetLevel(level)
		logger.SetReportTimestamp(file != nil)
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *log.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if logger, ok := global.loggers[component]; ok {
		return logger
	}

	logger := log.NewWithOptions(global.out, log.Options{
		Level:           global.level,
		Prefix:          component,
		ReportTimestamp: global.file != nil,
		TimeFormat:      time.RFC3339,
	})
	global.loggers[component] = logger
	return logger
}

// Close closes the log file, if any, and routes output back to stderr.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	global.out = os.Stderr
	for _, logger := range global.loggers {
		logger.SetOutput(os.Stderr)
		logger.SetReportTimestamp(false)
	}
	return err
}

// Package logger provides the zerolog backed implementation of the core
// logging interface.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/fleethealth/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards every message.
type NopLogger = corelogger.Nop

// Config selects the level, format and destination of application logs.
type Config struct {
	Level string `json:"level"`
	// Format is "json" or "console". Empty follows APP_ENV.
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
		if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
			c.Format = "console"
		}
	}
	if c.File != "" {
		if c.MaxSizeMB == 0 {
			c.MaxSizeMB = 50
		}
		if c.MaxBackups == 0 {
			c.MaxBackups = 5
		}
		if c.MaxAgeDays == 0 {
			c.MaxAgeDays = 28
		}
	}
}

// Validate checks the level and format.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}

// Output returns the destination described by cfg. File output rotates
// through lumberjack; the returned closer must be closed on shutdown.
func Output(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.File == "" {
		return os.Stdout, nopCloser{}, nil
	}
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return lj, lj, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Factory builds component loggers sharing one configuration.
type Factory struct {
	raw    io.Writer
	out    io.Writer
	level  zerolog.Level
	closer io.Closer
}

// NewFactory configures the logging destination.
func NewFactory(cfg Config) (*Factory, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out, closer, err := Output(cfg)
	if err != nil {
		return nil, err
	}
	level, _ := zerolog.ParseLevel(cfg.Level)
	raw := out
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02T15:04:05Z07:00", NoColor: cfg.File != ""}
	}
	return &Factory{raw: raw, out: out, level: level, closer: closer}, nil
}

// New returns a Logger tagged with component.
func (f *Factory) New(component string) Logger {
	z := zerolog.New(f.out).Level(f.level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

// Writer returns the destination shared by every component, before any
// console formatting.
func (f *Factory) Writer() io.Writer { return f.raw }

// Close releases the log file, if any.
func (f *Factory) Close() error { return f.closer.Close() }

// New returns a Logger for the given component writing to stdout. The
// environment is detected via the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// Package logging builds the zerolog logger used across the release
// pipeline.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// Format is the output format (json, console, auto).
	Format string

	// Output is where to write logs (stderr, stdout, discard).
	Output string

	// NoColor disables color output in console mode.
	NoColor bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New creates a logger from configuration.
func New(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	writer := getWriter(cfg)

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func getWriter(cfg *Config) io.Writer {
	var output *os.File
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		output = os.Stderr
	}

	format := strings.ToLower(cfg.Format)
	if format == "auto" {
		if info, err := output.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			format = "console"
		} else {
			format = "json"
		}
	}

	switch format {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		}
	default:
		return output
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

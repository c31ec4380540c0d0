// Package logging provides the process-wide diagnostic logger. Diagnostics
// go to stderr so command output on stdout stays machine-readable.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable consulted for the log level.
const EnvLevel = "SUPERCRAFT_LOG_LEVEL"

// Logger is the global logger instance.
var Logger zerolog.Logger

// Level aliases zerolog levels.
type Level = zerolog.Level

const (
	DebugLevel    = zerolog.DebugLevel
	InfoLevel     = zerolog.InfoLevel
	WarnLevel     = zerolog.WarnLevel
	ErrorLevel    = zerolog.ErrorLevel
	DisabledLevel = zerolog.Disabled
)

// Config holds logger configuration.
type Config struct {
	Level  Level
	Output io.Writer
	// Pretty selects the human-readable console writer instead of JSON lines.
	Pretty     bool
	TimeFormat string
}

// DefaultConfig logs to stderr in console format at the level named by
// $SUPERCRAFT_LOG_LEVEL, or warn when it is unset or unrecognized.
func DefaultConfig() Config {
	level, err := ParseLevel(os.Getenv(EnvLevel))
	if err != nil {
		level = WarnLevel
	}
	return Config{
		Level:      level,
		Output:     os.Stderr,
		Pretty:     true,
		TimeFormat: time.TimeOnly,
	}
}

// Init replaces the global logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	Logger = zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel parses a level name (case-insensitive): debug, info, warn,
// error or off.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning", "":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "off", "none", "disabled":
		return DisabledLevel, nil
	default:
		return WarnLevel, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error, off)", level)
	}
}

// Debug starts a new debug level message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts a new info level message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a new warn level message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts a new error level message.
func Error() *zerolog.Event {
	return Logger.Error()
}

func init() {
	Init(DefaultConfig())
}

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger. When human is true output goes through
// a console writer; otherwise each line is a JSON object on stderr. The level
// string is one of trace, debug, info, warn, error; unknown values fall back
// to info.
func Init(level string, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	base := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	} else {
		log.Logger = base
	}
	zerolog.SetGlobalLevel(parseLevel(level))
}

// InitFile points the global logger at a JSON log file, creating parent
// directories as needed. Sessions that own the terminal log here instead of
// stderr. The caller closes the returned file on shutdown.
func InitFile(level, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(parseLevel(level))
	return f, nil
}

// Component returns a child of the global logger tagged with a component
// field, for handing to subsystem constructors.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
	default:
		return zerolog.InfoLevel
	}
}

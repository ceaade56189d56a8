// Package logger configures the process-wide zerolog logger. Everything
// else logs through the global, so Setup runs once, first thing in main.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	// Unknown or empty values mean info.
	Level string
	// Pretty switches to the human console writer for local runs.
	// Production stays on JSON lines.
	Pretty bool
}

func Setup(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(os.Stdout)
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}

	log.Logger = logger.With().Timestamp().Str("service", "ice-api").Logger()
}

// Package logging provides structured logging for the dedupe tool using
// zerolog. Operational logs are written to stderr, human-readable on a
// terminal and JSON otherwise, and are kept apart from both the
// deduplicated output and the duplicate diagnostics.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("file", "export.csv").Msg("Reading records")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithKey(ctx, "Site")
//	logging.FromContext(ctx).Debug().Msg("Resolving conflict")
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is used when no logger travels in the context.
var defaultLogger = NewLoggerFromConfig(envConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/dedupe/pkg/logging"
)

// defaultLogLevel keeps the diagnostic stream free of operational logs
// unless asked for.
const defaultLogLevel = "warn"

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for error)
//  4. DEDUPE_LOG_LEVEL / LOG_LEVEL environment variable or config file
//  5. Default (warn)
func NewLogger(config *Config, warnings io.Writer) zerolog.Logger {
	level := determineLogLevel(config, warnings)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config, warnings io.Writer) string {
	// 1. Explicit --log-level always wins
	if config.ExplicitLogLevel != "" {
		return checkedLogLevel(config.ExplicitLogLevel, warnings)
	}

	// 2. Check for conflicting boolean flags
	if config.Verbose && config.Quiet {
		fmt.Fprintf(warnings, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "error"
	}

	// 3. Boolean shortcuts
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "error"
	}

	// 4. Environment or config file
	if config.LogLevel != "" {
		return checkedLogLevel(config.LogLevel, warnings)
	}

	// 5. Default
	return defaultLogLevel
}

func checkedLogLevel(level string, warnings io.Writer) string {
	validated := validateLogLevel(level)
	if validated != level {
		fmt.Fprintf(warnings, "Warning: invalid log level %q, using %q\n", level, validated)
	}
	return validated
}

// validateLogLevel validates a log level string and returns a valid level.
// If the input is invalid, returns the default level.
func validateLogLevel(level string) string {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[level] {
		return level
	}

	return defaultLogLevel
}

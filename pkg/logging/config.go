package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/dedupe/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum level written (trace, debug, info, warn, error, off)
	Level string

	// Format is json, console, or auto (console on a terminal)
	Format string

	// Output is stderr, discard, or a file path. Logs never go to stdout.
	Output string

	// NoColor disables color in console format
	NoColor bool

	// AddCaller includes file:line in every entry
	AddCaller bool
}

// DefaultConfig returns the configuration of an unconfigured run: warnings
// and errors only, on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "warn",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// envConfig reads DEDUPE_LOG_* and falls back to the unprefixed LOG_*.
func envConfig() *Config {
	cfg := DefaultConfig()
	if v := lookupEnv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := lookupEnv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := lookupEnv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

func lookupEnv(name string) string {
	if v := os.Getenv(constants.EnvPrefix + "_" + name); v != "" {
		return v
	}
	return os.Getenv(name)
}

// NewLoggerFromConfig creates a new logger from configuration. It also sets
// the zerolog global level so that package-level events obey the same level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writerFor(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

func writerFor(cfg *Config) io.Writer {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "", "auto":
		f, ok := out.(*os.File)
		if !ok || !isatty.IsTerminal(f.Fd()) {
			return out
		}
	default:
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.NoColor,
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean warn.
func ParseLevel(level string) zerolog.Level {
	switch s := strings.ToLower(strings.TrimSpace(level)); s {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(s); err == nil && s != "" {
			return l
		}
		return zerolog.WarnLevel
	}
}

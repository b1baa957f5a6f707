// Package app provides the application context and dependency management
// for the dedupe CLI. It centralizes configuration, logging, and the
// standard streams so commands can be exercised in tests.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// App represents the dedupe application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger       *zerolog.Logger
	customLogger bool

	// Standard streams. Output goes to stdout; diagnostics, prompts and
	// logs go to stderr.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance with the given version information.
// The app is initialized from the environment and config file and can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	// Apply custom options first so an injected config skips loading.
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config, app.stderr)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// stdinFile returns stdin when it is a real file, for terminal detection.
func (a *App) stdinFile() *os.File {
	f, _ := a.stdin.(*os.File)
	return f
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.customLogger = logger != nil
		return nil
	}
}

// WithStreams replaces the standard streams (useful for testing).
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
		return nil
	}
}

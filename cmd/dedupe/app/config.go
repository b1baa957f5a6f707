package app

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/dedupe/internal/cmd/alerts"
	"github.com/agentstation/dedupe/internal/cmd/output"
	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/resolver"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Resolution
	Policy            string
	KeyColumn         string
	SignificantFields []string
	RequiredColumns   []string
	Prefer            string

	// Input
	Comma      string
	LazyQuotes bool

	// Diagnostics and reports
	ShowRows          bool
	RowDelimiter      string
	DiagnosticsFormat string
	Summary           string
	Format            string

	// Logging configuration. LogLevel comes from the environment or the
	// config file; ExplicitLogLevel from --log-level.
	LogLevel         string
	ExplicitLogLevel string
	LogFormat        string
	LogOutput        string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Policy:            string(resolver.PolicyAuto),
		KeyColumn:         constants.DefaultKeyColumn,
		SignificantFields: constants.DefaultSignificantFields(),
		RequiredColumns:   constants.DefaultRequiredColumns(),
		Prefer:            string(resolver.PreferExisting),
		Comma:             ",",
		RowDelimiter:      constants.DefaultRowDelimiter,
		DiagnosticsFormat: string(alerts.FormatText),
		Summary:           string(output.FormatNone),
		LogFormat:         "auto",
		LogOutput:         "stderr",
	}
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (DEDUPE_*)
// 3. .env files
// 4. Config file (--config, or .dedupe.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("policy", defaults.Policy)
	v.SetDefault("key_column", defaults.KeyColumn)
	v.SetDefault("significant_fields", defaults.SignificantFields)
	v.SetDefault("required_columns", defaults.RequiredColumns)
	v.SetDefault("prefer", defaults.Prefer)
	v.SetDefault("comma", defaults.Comma)
	v.SetDefault("row_delimiter", defaults.RowDelimiter)
	v.SetDefault("diagnostics_format", defaults.DiagnosticsFormat)
	v.SetDefault("summary", defaults.Summary)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_output", defaults.LogOutput)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The unprefixed names follow common conventions and lose to DEDUPE_*.
	for key, env := range map[string]string{
		"log_level":  "LOG_LEVEL",
		"log_format": "LOG_FORMAT",
		"log_output": "LOG_OUTPUT",
		"no_color":   "NO_COLOR",
	} {
		if err := v.BindEnv(key, constants.EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, errors.NewConfigError("env", fmt.Sprintf("binding %s", env), err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config file", "", err)
			}
		}
	}

	config := &Config{
		NoColor:    v.GetBool("no_color"),
		ConfigFile: v.ConfigFileUsed(),

		Policy:            v.GetString("policy"),
		KeyColumn:         v.GetString("key_column"),
		SignificantFields: splitList(v.GetStringSlice("significant_fields")),
		RequiredColumns:   splitList(v.GetStringSlice("required_columns")),
		Prefer:            v.GetString("prefer"),

		Comma:      v.GetString("comma"),
		LazyQuotes: v.GetBool("lazy_quotes"),

		ShowRows:          v.GetBool("show_rows"),
		RowDelimiter:      v.GetString("row_delimiter"),
		DiagnosticsFormat: v.GetString("diagnostics_format"),
		Summary:           v.GetString("summary"),
		Format:            v.GetString("format"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flags bound directly to config fields need no update; these are the ones
// that only apply when given.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if logLevel != "" {
		c.ExplicitLogLevel = logLevel
	}
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if _, err := resolver.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := resolver.ParsePrefer(c.Prefer); err != nil {
		return err
	}
	if _, err := alerts.ParseFormat(c.DiagnosticsFormat); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Summary); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.CommaRune(); err != nil {
		return err
	}
	if strings.EqualFold(c.LogOutput, "stdout") {
		return errors.NewValidationError("log_output", c.LogOutput, "stdout is reserved for the deduplicated output")
	}
	if strings.TrimSpace(c.KeyColumn) == "" {
		return errors.NewValidationError("key_column", c.KeyColumn, "cannot be empty")
	}
	return nil
}

// CommaRune returns the input field delimiter.
func (c *Config) CommaRune() (rune, error) {
	s := c.Comma
	if s == `\t` {
		s = "\t"
	}
	if s == "" {
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.NewValidationError("comma", c.Comma, "must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errors.NewValidationError("comma", c.Comma, "is not a valid delimiter")
	}
	return r, nil
}

// splitList accepts both YAML lists and comma-separated strings.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local is loaded first because godotenv never overrides a
	// variable that is already set.
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

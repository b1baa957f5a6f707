// Package constants provides shared constants used throughout the dedupe
// codebase: file permissions, default column names and the defaults for the
// conflict resolution policies.
package constants

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for output that holds credentials (rw-------)
	SecureFilePermissions = 0600
)

// Column names of the password manager export format.
const (
	// ColumnName is the logical key column.
	ColumnName = "name"

	// ColumnURL holds the site address.
	ColumnURL = "url"

	// ColumnUsername holds the login.
	ColumnUsername = "username"

	// ColumnPassword holds the secret.
	ColumnPassword = "password"
)

// Resolver defaults.
const (
	// DefaultKeyColumn is the column used as the logical key.
	DefaultKeyColumn = ColumnName

	// DefaultRowDelimiter joins raw field sequences in diagnostics.
	DefaultRowDelimiter = ","

	// SplitSuffixStart is the first number tried when deriving a split key.
	SplitSuffixStart = 2
)

// DefaultSignificantFields returns the security-relevant columns compared by
// the automatic policy.
func DefaultSignificantFields() []string {
	return []string{ColumnURL, ColumnUsername, ColumnPassword}
}

// DefaultRequiredColumns returns the columns every input header must carry.
func DefaultRequiredColumns() []string {
	return []string{ColumnName, ColumnURL, ColumnUsername, ColumnPassword}
}

// Environment and config file naming.
const (
	// EnvPrefix is the prefix of environment variables read by the CLI.
	EnvPrefix = "DEDUPE"

	// ConfigFileName is the base name of the optional config file.
	ConfigFileName = ".dedupe"
)

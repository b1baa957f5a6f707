// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols prefix alerts on the diagnostic stream.
const (
	// Success marks a completed operation, such as a written output file.
	Success = "✓"

	// Error marks a fatal failure.
	Error = "✗"

	// Warning marks a conflict or a non-fatal problem.
	Warning = "!"

	// Info marks informational messages.
	Info = "i"

	// Unknown marks an unrecognized status.
	Unknown = "?"
)

// Package errors provides custom error types for the dedupe system.
// These errors enable programmatic error checking with errors.Is and
// errors.As and carry enough context (paths, lines, columns) to be
// printed directly to the user.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the dedupe system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRecord indicates a row that could not be parsed or does
	// not line up with the header
	ErrMalformedRecord = errors.New("malformed record")

	// ErrPromptAborted indicates that the interactive prompt was interrupted
	// or closed before an answer was given
	ErrPromptAborted = errors.New("prompt aborted")

	// ErrPromptUnavailable indicates that no interactive surface is available
	ErrPromptUnavailable = errors.New("prompt unavailable")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SchemaError reports a header that lacks one or more required columns.
type SchemaError struct {
	File    string
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	cols := "'" + strings.Join(e.Missing, "', '") + "'"
	if e.File != "" {
		return fmt.Sprintf("%s: header is missing required column(s) %s", e.File, cols)
	}
	return fmt.Sprintf("header is missing required column(s) %s", cols)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(file string, missing []string) *SchemaError {
	return &SchemaError{File: file, Missing: missing}
}

// ParseError represents an error when parsing the tabular input
type ParseError struct {
	Format  string // "csv"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s parse error in %s at line %d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at line %d: %s", e.Format, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, line int, err error) *ParseError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{
		Format:  format,
		File:    file,
		Line:    line,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// PromptError represents a failure of the interactive prompt surface.
type PromptError struct {
	Question string
	Err      error
}

// Error implements the error interface
func (e *PromptError) Error() string {
	if e.Question != "" {
		return fmt.Sprintf("prompt %q failed: %v", e.Question, e.Err)
	}
	return fmt.Sprintf("prompt failed: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PromptError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. Every prompt failure is an abort from
// the engine's point of view.
func (e *PromptError) Is(target error) bool {
	return target == ErrPromptAborted
}

// NewPromptError creates a new PromptError
func NewPromptError(question string, err error) *PromptError {
	return &PromptError{Question: question, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMalformed checks if an error reports a malformed input record
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsPromptAborted checks if an error comes from an interrupted prompt
func IsPromptAborted(err error) bool {
	return errors.Is(err, ErrPromptAborted)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, line int, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, line, err)
}

// WrapPrompt wraps an error as a PromptError
func WrapPrompt(question string, err error) error {
	if err == nil {
		return nil
	}
	return NewPromptError(question, err)
}

// Package alerts writes status notifications and duplicate diagnostics to
// the diagnostic stream.
package alerts

import (
	"fmt"
	"io"
)

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// NewError creates a new error alert.
func NewError(message string) *Alert {
	return New(LevelError, message)
}

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert {
	return New(LevelSuccess, message)
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// String returns a string representation of the alert.
func (a *Alert) String() string {
	message := a.Message
	if a.Err != nil {
		if message == "" {
			message = a.Err.Error()
		} else {
			message += fmt.Sprintf(": %v", a.Err)
		}
	}
	return message
}

// Writer handles alert output to different formats and destinations.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc is an adapter to allow functions to be used as Writers.
type WriterFunc func(*Alert) error

// WriteAlert calls the function.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// NewWriterTo creates a Writer that prints the icon and message to w.
func NewWriterTo(w io.Writer) Writer {
	return WriterFunc(func(alert *Alert) error {
		_, err := fmt.Fprintf(w, "%s %s\n", alert.Level.Icon(), alert.String())
		return err
	})
}

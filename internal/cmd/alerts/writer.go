package alerts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/dedupe"
	"github.com/agentstation/dedupe/pkg/errors"
)

// Format selects how alerts and diagnostics are written.
type Format string

const (
	// FormatText writes one human-readable line per event.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatYAML writes one YAML document per event.
	FormatYAML Format = "yaml"
)

// ParseFormat converts string to Format with validation. The empty string
// means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.NewValidationError("diagnostics_format", s,
			fmt.Sprintf("invalid format %q: must be one of: text, json, yaml", s))
	}
}

// FormatWriter writes alerts and duplicate diagnostics in one format. It
// implements dedupe.Reporter.
type FormatWriter struct {
	writer io.Writer
	format Format
	config WriterConfig
}

// WriterConfig configures alert output behavior.
type WriterConfig struct {
	// ShowDetails prints the raw rows of both records after a diagnostic.
	ShowDetails  bool
	UseColor     bool
	RowDelimiter string
}

// NewFormatWriter creates a new FormatWriter for the specified format.
func NewFormatWriter(w io.Writer, format Format) *FormatWriter {
	return &FormatWriter{
		writer: w,
		format: format,
		config: WriterConfig{
			UseColor:     isTerminal(w) && !color.NoColor,
			RowDelimiter: constants.DefaultRowDelimiter,
		},
	}
}

// WithConfig sets the writer configuration.
func (fw *FormatWriter) WithConfig(config WriterConfig) *FormatWriter {
	if config.RowDelimiter == "" {
		config.RowDelimiter = constants.DefaultRowDelimiter
	}
	fw.config = config
	return fw
}

// Config returns the writer configuration.
func (fw *FormatWriter) Config() WriterConfig {
	return fw.config
}

// WriteAlert writes an alert in the configured format.
func (fw *FormatWriter) WriteAlert(alert *Alert) error {
	switch fw.format {
	case FormatJSON:
		return fw.writeJSON(toAlertData(alert))
	case FormatYAML:
		return fw.writeYAML(toAlertData(alert))
	default:
		return fw.writePlain(alert)
	}
}

// Report implements dedupe.Reporter.
func (fw *FormatWriter) Report(ev dedupe.Event) error {
	switch fw.format {
	case FormatJSON:
		return fw.writeJSON(fw.toEventData(ev))
	case FormatYAML:
		return fw.writeYAML(fw.toEventData(ev))
	default:
		return fw.writeEvent(ev)
	}
}

// alertData represents alert data for structured output.
type alertData struct {
	Level   string `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func toAlertData(alert *Alert) alertData {
	data := alertData{Level: alert.Level.String(), Message: alert.Message}
	if alert.Err != nil {
		data.Error = alert.Err.Error()
	}
	return data
}

// eventData represents a duplicate diagnostic for structured output.
type eventData struct {
	Kind         string   `json:"kind" yaml:"kind"`
	Key          string   `json:"key" yaml:"key"`
	Line         int      `json:"line" yaml:"line"`
	ExistingLine int      `json:"existing_line" yaml:"existing_line"`
	Message      string   `json:"message" yaml:"message"`
	Fields       []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Incoming     []string `json:"incoming,omitempty" yaml:"incoming,omitempty"`
	Existing     []string `json:"existing,omitempty" yaml:"existing,omitempty"`
}

func (fw *FormatWriter) toEventData(ev dedupe.Event) eventData {
	data := eventData{
		Kind:         string(ev.Kind),
		Key:          ev.Key,
		Line:         ev.Line(),
		ExistingLine: ev.ExistingLine(),
		Message:      ev.Message(),
		Fields:       ev.Fields,
	}
	if fw.config.ShowDetails {
		data.Incoming = ev.Incoming.Fields()
		data.Existing = ev.Existing.Fields()
	}
	return data
}

func (fw *FormatWriter) writeJSON(data any) error {
	return json.NewEncoder(fw.writer).Encode(data)
}

func (fw *FormatWriter) writeYAML(data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fw.writer, "---\n"); err != nil {
		return err
	}
	_, err = fw.writer.Write(out)
	return err
}

func (fw *FormatWriter) writeEvent(ev dedupe.Event) error {
	level := LevelInfo
	if ev.Kind == dedupe.EventConflict {
		level = LevelWarning
	}

	if _, err := fmt.Fprintln(fw.writer, fw.paint(level, ev.Message())); err != nil {
		return err
	}
	if fw.config.ShowDetails {
		for _, r := range []string{ev.Incoming.Join(fw.config.RowDelimiter), ev.Existing.Join(fw.config.RowDelimiter)} {
			if _, err := fmt.Fprintf(fw.writer, "  %s\n", r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (fw *FormatWriter) writePlain(alert *Alert) error {
	_, err := fmt.Fprintln(fw.writer, fw.paint(alert.Level, alert.Level.Icon()+" "+alert.String()))
	return err
}

func (fw *FormatWriter) paint(level Level, s string) string {
	if !fw.config.UseColor {
		return s
	}
	c := level.Color()
	c.EnableColor()
	return c.Sprint(s)
}

// isTerminal checks if the writer is a terminal (for color support).
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

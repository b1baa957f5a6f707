package dedupe

import (
	"fmt"

	"github.com/agentstation/dedupe/pkg/records"
)

// EventKind classifies a diagnostic event.
type EventKind string

const (
	// EventMatch reports a duplicate whose compared fields all agree.
	EventMatch EventKind = "match"
	// EventConflict reports a duplicate with at least one differing field.
	EventConflict EventKind = "conflict"
)

// Event describes one duplicate, reported before it is resolved.
type Event struct {
	Kind     EventKind
	Key      string
	Incoming records.Record
	Existing records.Record

	// Fields names the differing columns of a conflict, in schema order.
	Fields []string
}

// Line is the source line of the incoming record.
func (e Event) Line() int {
	return e.Incoming.Line()
}

// ExistingLine is the source line of the canonical record.
func (e Event) ExistingLine() int {
	return e.Existing.Line()
}

// Message renders the one-line diagnostic for e.
func (e Event) Message() string {
	if e.Kind == EventConflict {
		return fmt.Sprintf("'%s' at line %d is different from record at line %d", e.Key, e.Line(), e.ExistingLine())
	}
	return fmt.Sprintf("'%s' at line %d matches line %d", e.Key, e.Line(), e.ExistingLine())
}

// Reporter receives diagnostic events. Reporters write to the diagnostic
// stream and never to the canonical output.
type Reporter interface {
	Report(e Event) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(e Event) error

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) error {
	return f(e)
}

// Discard is a Reporter that drops every event.
var Discard Reporter = ReporterFunc(func(Event) error { return nil })

// Recorder is a Reporter that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Report implements Reporter.
func (r *Recorder) Report(e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

// Messages returns the rendered message of every recorded event.
func (r *Recorder) Messages() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Message()
	}
	return out
}

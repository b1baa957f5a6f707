package resolver

import "github.com/agentstation/dedupe/pkg/records"

// Kind tags the variant of an Outcome.
type Kind int

const (
	// KeepExisting leaves the index untouched.
	KeepExisting Kind = iota
	// Replace makes Outcome.Record the canonical record for the key.
	Replace
	// Merge makes the merged Outcome.Record the canonical record for the key.
	Merge
	// Split inserts Outcome.Record under Outcome.NewKey; the original key
	// keeps its canonical record.
	Split
	// DropBoth removes the key from the index.
	DropBoth
)

// String returns the string representation of an outcome kind.
func (k Kind) String() string {
	switch k {
	case KeepExisting:
		return "keep-existing"
	case Replace:
		return "replace"
	case Merge:
		return "merge"
	case Split:
		return "split"
	case DropBoth:
		return "drop-both"
	default:
		return "unknown"
	}
}

// Outcome is the decision produced for one conflict. The resolver decides;
// the engine applies the outcome to the index.
type Outcome struct {
	Kind   Kind
	Record records.Record
	NewKey string
}

// Keep returns a KeepExisting outcome.
func Keep() Outcome {
	return Outcome{Kind: KeepExisting}
}

// Replaced returns a Replace outcome carrying r.
func Replaced(r records.Record) Outcome {
	return Outcome{Kind: Replace, Record: r}
}

// Merged returns a Merge outcome carrying the merged record.
func Merged(r records.Record) Outcome {
	return Outcome{Kind: Merge, Record: r}
}

// SplitInto returns a Split outcome inserting r under newKey.
func SplitInto(newKey string, r records.Record) Outcome {
	return Outcome{Kind: Split, Record: r, NewKey: newKey}
}

// Dropped returns a DropBoth outcome.
func Dropped() Outcome {
	return Outcome{Kind: DropBoth}
}

// Conflict is the input of a resolution: a new record that shares its key
// with the canonical record already held.
type Conflict struct {
	Key        string
	Incoming   records.Record
	Existing   records.Record
	Comparison Comparison
}

package resolver

import "github.com/agentstation/dedupe/pkg/records"

// Classification is the relationship between an incoming record and the
// canonical record held for the same key.
type Classification int

const (
	// Identical means every compared field is equal.
	Identical Classification = iota
	// Conflicting means at least one compared field differs.
	Conflicting
)

// String returns the string representation of a classification.
func (c Classification) String() string {
	switch c {
	case Identical:
		return "identical"
	case Conflicting:
		return "conflicting"
	default:
		return "unknown"
	}
}

// Comparison is the result of comparing two records field by field.
type Comparison struct {
	Classification Classification

	// Differing lists the positions whose values differ, in schema order.
	Differing []int
}

// First returns the first differing position, or -1 when identical.
func (c Comparison) First() int {
	if len(c.Differing) == 0 {
		return -1
	}
	return c.Differing[0]
}

// Compare checks the given positions in order. It is a pure function of its
// inputs; a position missing from either record compares as "".
func Compare(incoming, existing records.Record, positions []int) Comparison {
	var differing []int
	for _, pos := range positions {
		if incoming.Value(pos) != existing.Value(pos) {
			differing = append(differing, pos)
		}
	}
	if len(differing) == 0 {
		return Comparison{Classification: Identical}
	}
	return Comparison{Classification: Conflicting, Differing: differing}
}

// nonKeyPositions returns every schema position except key.
func nonKeyPositions(n, key int) []int {
	positions := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != key {
			positions = append(positions, i)
		}
	}
	return positions
}

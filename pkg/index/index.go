// Package index holds the canonical record for every logical key seen so far.
//
// Lookups are O(1) through a map while emission follows first-insertion
// order: the position of a key is fixed when the key is first established
// and survives later replacements. Removing a key frees its slot; a later
// insert under the same key starts a new lifecycle at the end of the order.
//
// The index lives entirely in memory. Its size grows with the number of
// distinct keys (plus rows that bypass it), not with the number of input
// rows, and that is the scaling limit of a run. It is not safe for
// concurrent use; the engine owns it exclusively.
package index

import (
	"github.com/agentstation/dedupe/pkg/records"
)

// entry is one slot of the emission order.
type entry struct {
	key     string
	keyed   bool
	record  records.Record
	removed bool
}

// Index maps logical keys to canonical records.
type Index struct {
	order []*entry
	byKey map[string]*entry
	live  int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		byKey: make(map[string]*entry),
	}
}

// Lookup returns the canonical record for key.
func (x *Index) Lookup(key string) (records.Record, bool) {
	e, ok := x.byKey[key]
	if !ok {
		return records.Record{}, false
	}
	return e.record, true
}

// Contains reports whether key has a live entry.
func (x *Index) Contains(key string) bool {
	_, ok := x.byKey[key]
	return ok
}

// Insert establishes or overwrites the canonical record for key. Only the
// first establishment assigns an emission position.
func (x *Index) Insert(key string, r records.Record) {
	if e, ok := x.byKey[key]; ok {
		e.record = r
		return
	}
	e := &entry{key: key, keyed: true, record: r}
	x.order = append(x.order, e)
	x.byKey[key] = e
	x.live++
}

// Remove drops the entry for key. It reports whether an entry existed.
func (x *Index) Remove(key string) bool {
	e, ok := x.byKey[key]
	if !ok {
		return false
	}
	e.removed = true
	e.record = records.Record{}
	delete(x.byKey, key)
	x.live--
	return true
}

// Append adds a record that takes part in emission order but not in key
// matching, such as a row with an empty key.
func (x *Index) Append(r records.Record) {
	x.order = append(x.order, &entry{record: r})
	x.live++
}

// Len returns the number of live entries, keyed or not.
func (x *Index) Len() int {
	return x.live
}

// Keys returns the number of live keyed entries.
func (x *Index) Keys() int {
	return len(x.byKey)
}

// Each calls fn for every live entry in first-insertion order until fn
// returns false. keyed is false for appended records.
func (x *Index) Each(fn func(key string, keyed bool, r records.Record) bool) {
	for _, e := range x.order {
		if e.removed {
			continue
		}
		if !fn(e.key, e.keyed, e.record) {
			return
		}
	}
}

// Emit returns every live record in first-insertion order.
func (x *Index) Emit() []records.Record {
	out := make([]records.Record, 0, x.live)
	x.Each(func(_ string, _ bool, r records.Record) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Package table converts run results into rows for table output.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/dedupe/pkg/dedupe"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a table ready for rendering. Headers are snake_case keys; the
// renderer titles them.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// SummaryToTableData converts a run summary to a two-column table.
func SummaryToTableData(s dedupe.Summary) Data {
	rows := [][]string{
		{"Policy", s.Policy},
		{"Rows read", strconv.Itoa(s.Read)},
		{"First seen", strconv.Itoa(s.FirstSeen)},
		{"Identical", strconv.Itoa(s.Identical)},
		{"Conflicts", strconv.Itoa(s.Conflicts)},
		{"Kept", strconv.Itoa(s.Kept)},
		{"Replaced", strconv.Itoa(s.Replaced)},
		{"Merged", strconv.Itoa(s.Merged)},
		{"Split", strconv.Itoa(s.Split)},
		{"Dropped", strconv.Itoa(s.Dropped)},
		{"Pass-through", strconv.Itoa(s.PassThrough)},
		{"Rows written", strconv.Itoa(s.Written)},
		{"Distinct keys", strconv.Itoa(s.DistinctKeys)},
		{"Duration", s.Duration},
	}
	return Data{
		Headers:         []string{"metric", "value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// GroupsToTableData converts a duplicate scan to table rows.
func GroupsToTableData(groups []dedupe.Group) Data {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Key, strconv.Itoa(g.Count()), FormatLines(g.Lines)})
	}
	return Data{
		Headers:         []string{"name", "count", "lines"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// FormatLines joins line numbers with commas.
func FormatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ", ")
}

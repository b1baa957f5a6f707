package output

import (
	"io"

	"github.com/agentstation/dedupe/internal/cmd/table"
	"github.com/agentstation/dedupe/pkg/dedupe"
)

// FormatSummary writes the run summary in format.
func FormatSummary(w io.Writer, format Format, s dedupe.Summary) error {
	var data any = s
	if format == FormatTable || format == "" {
		data = table.SummaryToTableData(s)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatGroups writes a duplicate scan in format.
func FormatGroups(w io.Writer, format Format, groups []dedupe.Group) error {
	var data any = groups
	if format == FormatTable || format == "" {
		data = table.GroupsToTableData(groups)
	}
	return NewFormatter(format).Format(w, data)
}

package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Formatter renders diagnostics as plain text, one finding per line
// with optional suggestion and note lines underneath.
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a formatter writing to out.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// Format writes a single diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = string(SeverityError)
	}

	if d.Location.IsValid() {
		fmt.Fprintf(f.out, "%s: %s[%s]: %s\n", d.Location, severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(f.out, "%s[%s]: %s\n", severity, d.Code, d.Message)
	}

	if d.Suggestion != "" {
		fmt.Fprintf(f.out, "  suggestion: %s\n", d.Suggestion)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  note: %s\n", note)
	}
}

// FormatAll writes diagnostics sorted by location, then severity.
func (f *Formatter) FormatAll(diags []Diagnostic) {
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return severityRank(a.Severity) < severityRank(b.Severity)
	})
	for _, d := range sorted {
		f.Format(d)
	}
}

// Render returns the formatted representation of diagnostics as a string.
func Render(diags []Diagnostic) string {
	var sb strings.Builder
	NewFormatter(&sb).FormatAll(diags)
	return sb.String()
}

func severityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

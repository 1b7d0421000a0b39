package diag

import (
	"fmt"
	"strings"

	"tmplc/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<sev> <path>:<line>:<col> <message>" (position omitted when unknown).
// text is the template the offsets point into.
func FormatShort(path, text string, diags []Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		msg := strings.ReplaceAll(d.Message, "\n", " ")
		if d.Range.HasStart {
			pos := source.Resolve(text, d.Range.Start)
			fmt.Fprintf(&b, "%s %s:%d:%d %s", d.Severity, path, pos.Line, pos.Col, msg)
		} else {
			fmt.Fprintf(&b, "%s %s %s", d.Severity, path, msg)
		}
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

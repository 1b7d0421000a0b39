package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tmplc/internal/diag"
	"tmplc/internal/source"
)

// Pretty writes diagnostics in human-readable form: a header line with
// severity, location and message, followed by a code frame when the
// diagnostic carries a range.
func Pretty(w io.Writer, path, text string, diags []diag.Diagnostic, opts PrettyOpts) error {
	context := int(opts.Context)
	if context <= 0 {
		context = defaultContext
	}
	shown := FormatPath(path, opts.PathMode, opts.BaseDir)
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, header(shown, text, d, opts.Color)+"\n"); err != nil {
			return err
		}
		for _, line := range strings.Split(d.Message, "\n")[1:] {
			if _, err := io.WriteString(w, "  "+clip(line, opts.Width)+"\n"); err != nil {
				return err
			}
		}
		if !d.Range.HasStart {
			continue
		}
		if _, err := io.WriteString(w, frame(text, d.Range, context, opts.Color)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func header(path, text string, d diag.Diagnostic, useColor bool) string {
	loc := path
	if d.Range.HasStart {
		pos := source.Resolve(text, d.Range.Start)
		loc = fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
	}
	first, _, _ := strings.Cut(d.Message, "\n")

	sev := d.Severity.String()
	if useColor {
		attr := color.FgRed
		if d.Severity == diag.SevTip {
			attr = color.FgCyan
		}
		c := color.New(attr, color.Bold)
		c.EnableColor()
		sev = c.Sprint(sev)
	}
	return fmt.Sprintf("%s: %s: %s", loc, sev, first)
}

// clip cuts s to width display columns; zero width disables clipping.
func clip(s string, width uint8) string {
	if width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}

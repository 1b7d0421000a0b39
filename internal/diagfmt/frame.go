package diagfmt

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tmplc/internal/source"
)

const (
	defaultContext = 2
	tabWidth       = 4
)

// Frame renders the lines around rng with a gutter and carets under the
// covered text. A range without a start renders nothing.
func Frame(text string, rng source.Range, useColor bool) string {
	return frame(text, rng, defaultContext, useColor)
}

func frame(text string, rng source.Range, context int, useColor bool) string {
	if !rng.HasStart {
		return ""
	}
	end := rng.End
	if !rng.HasEnd || end < rng.Start {
		end = rng.Start
	}
	lines := source.Lines(text)
	startPos := source.Resolve(text, rng.Start)
	endPos := source.Resolve(text, end)

	first := max(int(startPos.Line)-context, 1)
	last := min(int(endPos.Line)+context, len(lines))
	gutterWidth := len(fmt.Sprint(last))

	gutter := painter(useColor, color.Faint)
	caret := painter(useColor, color.FgRed, color.Bold)

	var b strings.Builder
	for ln := first; ln <= last; ln++ {
		line := lines[ln-1]
		fmt.Fprintf(&b, "%s %s\n", gutter(fmt.Sprintf("%*d |", gutterWidth, ln)), expandTabs(line))

		if ln < int(startPos.Line) || ln > int(endPos.Line) {
			continue
		}
		from, to := 0, len(line)
		if ln == int(startPos.Line) {
			from = int(startPos.Col) - 1
		}
		if ln == int(endPos.Line) {
			to = int(endPos.Col) - 1
		}
		from = min(from, len(line))
		to = min(max(to, from), len(line))
		pad := displayWidth(line[:from])
		width := max(displayWidth(line[from:to]), 1)
		fmt.Fprintf(&b, "%s %s%s\n",
			gutter(strings.Repeat(" ", gutterWidth)+" |"),
			strings.Repeat(" ", pad),
			caret(strings.Repeat("^", width)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func painter(enabled bool, attrs ...color.Attribute) func(string) string {
	if !enabled {
		return func(s string) string { return s }
	}
	c := color.New(attrs...)
	c.EnableColor()
	return func(s string) string { return c.Sprint(s) }
}

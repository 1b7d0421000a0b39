package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tmplc/internal/source"
)

func TestCollectorPlainModeDropsRanges(t *testing.T) {
	c := NewCollector(ModePlain, 7)
	c.Warn("bad thing", source.Span(2, 5), false)
	c.Warn("consider this", source.At(1), true)

	wantErrors := []Diagnostic{{Severity: SevError, Message: "bad thing"}}
	wantTips := []Diagnostic{{Severity: SevTip, Message: "consider this"}}
	if diff := cmp.Diff(wantErrors, c.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantTips, c.Tips()); diff != "" {
		t.Fatalf("tips mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorRangeModeShiftsBounds(t *testing.T) {
	c := NewCollector(ModeRange, 2)
	c.Warn("bad thing", source.Span(2, 5), false)
	c.Warn("start only", source.At(0), false)
	c.Warn("no range", source.Range{}, true)

	wantErrors := []Diagnostic{
		{Severity: SevError, Message: "bad thing", Range: source.Span(4, 7)},
		{Severity: SevError, Message: "start only", Range: source.At(2)},
	}
	wantTips := []Diagnostic{{Severity: SevTip, Message: "no range"}}
	if diff := cmp.Diff(wantErrors, c.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantTips, c.Tips()); diff != "" {
		t.Fatalf("tips mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestCollectorKeepsReportOrder(t *testing.T) {
	c := NewCollector(ModePlain, 0)
	for _, m := range []string{"a", "b", "c"} {
		c.Warn(m, source.Range{}, false)
	}
	got := c.Errors()
	if len(got) != 3 || got[0].Message != "a" || got[2].Message != "c" {
		t.Fatalf("unexpected order: %+v", got)
	}
	got[0].Message = "mutated"
	if c.Errors()[0].Message != "a" {
		t.Fatalf("Errors() must return a copy")
	}
}

func TestFormatShort(t *testing.T) {
	text := "<div>\n  <p v-if=\"!\"></p>\n</div>"
	diags := []Diagnostic{
		{Severity: SevError, Message: "invalid expression\nin v-if", Range: source.Span(11, 19)},
		{Severity: SevTip, Message: "no position"},
	}
	want := "error a.html:2:6 invalid expression in v-if\n" +
		"tip a.html no position"
	if got := FormatShort("a.html", text, diags); got != want {
		t.Fatalf("unexpected short output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

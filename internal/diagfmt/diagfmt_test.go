package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tmplc/internal/ast"
	"tmplc/internal/diag"
	"tmplc/internal/source"
)

func TestFrame(t *testing.T) {
	text := "<div>\n  <p v-if=\"!\"></p>\n</div>"
	got := Frame(text, source.Span(11, 19), false)
	want := "1 | <div>\n" +
		"2 |   <p v-if=\"!\"></p>\n" +
		"  |      ^^^^^^^^\n" +
		"3 | </div>"
	if got != want {
		t.Fatalf("unexpected frame:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFrameStartOnly(t *testing.T) {
	got := Frame("abc", source.At(1), false)
	want := "1 | abc\n  |  ^"
	if got != want {
		t.Fatalf("unexpected frame:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFrameNoRange(t *testing.T) {
	if got := Frame("abc", source.Range{}, false); got != "" {
		t.Fatalf("expected empty frame, got %q", got)
	}
}

func TestFrameWideRunes(t *testing.T) {
	// каждый иероглиф занимает две колонки
	text := "日本<b>"
	got := Frame(text, source.Span(6, 9), false)
	want := "1 | 日本<b>\n  |     ^^^"
	if got != want {
		t.Fatalf("unexpected frame:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFrameMultiline(t *testing.T) {
	text := "ab\ncd\nef"
	got := frame(text, source.Span(1, 4), 0, false)
	want := "1 | ab\n  |  ^\n2 | cd\n  | ^"
	if got != want {
		t.Fatalf("unexpected frame:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestPretty(t *testing.T) {
	text := "<div>{{ a b }}</div>"
	diags := []diag.Diagnostic{
		{Severity: diag.SevError, Message: "invalid expression\n  Raw expression: a b", Range: source.Span(5, 14)},
		{Severity: diag.SevTip, Message: "consider a key"},
	}
	var buf bytes.Buffer
	if err := Pretty(&buf, "page.html", text, diags, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "page.html:1:6: error: invalid expression\n" +
		"    Raw expression: a b\n" +
		"1 | <div>{{ a b }}</div>\n" +
		"  |      ^^^^^^^^^\n" +
		"\n" +
		"page.html: tip: consider a key\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON(t *testing.T) {
	text := "a\nbc"
	diags := []diag.Diagnostic{
		{Severity: diag.SevError, Message: "one", Range: source.Span(2, 4)},
		{Severity: diag.SevError, Message: "two"},
		{Severity: diag.SevTip, Message: "three"},
	}
	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, Max: 2}
	if err := JSON(&buf, "/tmp/x/t.html", text, diags, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", out)
	}
	loc := out.Diagnostics[0].Location
	if loc.File != "t.html" || loc.StartByte == nil || *loc.StartByte != 2 || *loc.EndByte != 4 {
		t.Fatalf("unexpected location: %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 1 || loc.EndLine != 2 || loc.EndCol != 3 {
		t.Fatalf("unexpected positions: %+v", loc)
	}
	if out.Diagnostics[1].Location.StartByte != nil {
		t.Fatalf("plain diagnostic must have no offsets")
	}
}

func TestFormatPath(t *testing.T) {
	if got := FormatPath("", PathModeAuto, ""); got != "<template>" {
		t.Fatalf("empty path = %q", got)
	}
	if got := FormatPath("/a/b/c.html", PathModeBasename, ""); got != "c.html" {
		t.Fatalf("basename = %q", got)
	}
	if got := FormatPath("/a/b/c.html", PathModeRelative, "/a"); got != "b/c.html" {
		t.Fatalf("relative = %q", got)
	}
	if _, ok := ParsePathMode("nope"); ok {
		t.Fatalf("unknown path mode accepted")
	}
}

func TestFormatASTPretty(t *testing.T) {
	root := ast.NewElement("div", nil)
	root.End = 30
	p := ast.NewElement("p", root)
	p.If = "ok"
	p.Start, p.End = 5, 15
	alt := ast.NewElement("span", root)
	alt.Else = true
	p.IfConditions = []ast.IfCondition{{Exp: "ok", Block: p}, {Block: alt}}
	txt := &ast.Node{Kind: ast.KindText, Text: "hi", Parent: p, Start: 8, End: 10}
	p.Children = []*ast.Node{txt}
	root.Children = []*ast.Node{p}

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, root); err != nil {
		t.Fatalf("FormatASTPretty: %v", err)
	}
	want := strings.Join([]string{
		"<div> [0-30]",
		"└─ <p> [5-15] if=ok",
		"   ├─ text \"hi\" [8-10]",
		"   └─ <span> [0-0] else",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := FormatASTJSON(&buf, root); err != nil {
		t.Fatalf("FormatASTJSON: %v", err)
	}
	var out ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Tag != "div" || len(out.Children) != 1 || out.Children[0].Fields["if"] != "ok" {
		t.Fatalf("unexpected json tree: %+v", out)
	}
}

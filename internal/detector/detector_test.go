package detector

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tmplc/internal/ast"
	"tmplc/internal/diag"
	"tmplc/internal/options"
	"tmplc/internal/parser"
	"tmplc/internal/source"
)

func detect(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	root, err := parser.Parse(src, options.Merge(nil, nil))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	col := diag.NewCollector(diag.ModeRange, 0)
	Detect(root, col)
	if len(col.Tips()) != 0 {
		t.Fatalf("detector must not emit tips: %v", col.Tips())
	}
	return col.Errors()
}

func TestDetectValidTemplate(t *testing.T) {
	src := `<div :a="ok" :b="'s'" :c="-1" v-if="!hidden" @click="save">` +
		`<p v-for="(x, i) in list.items" :key="x.id">{{ x.name }} {{ true }}</p><p v-else></p></div>`
	if got := detect(t, src); len(got) != 0 {
		t.Fatalf("unexpected findings: %v", got)
	}
}

func TestDetectInvalidExpressions(t *testing.T) {
	src := `<div :a="ok" :b="1 + 2" @click="delete x" v-if="if">{{ a.b }}{{ for.x }}</div>`
	got := detect(t, src)
	if len(got) != 4 {
		t.Fatalf("findings = %v", got)
	}
	if !strings.HasPrefix(got[0].Message, "invalid expression:") ||
		!strings.HasSuffix(got[0].Message, "Raw expression: :b=\"1 + 2\"\n") {
		t.Fatalf("first = %q", got[0].Message)
	}
	if got[0].Range != source.Span(13, 23) {
		t.Fatalf("first range = %v", got[0].Range)
	}
	want := []string{
		`avoid using JavaScript unary operator as property name: "delete" in expression @click="delete x"`,
		"avoid using JavaScript keyword as property name: \"if\"\n  Raw expression: v-if=\"if\"",
		"avoid using JavaScript keyword as property name: \"for\"\n  Raw expression: {{for.x}}",
	}
	msgs := []string{got[1].Message, got[2].Message, got[3].Message}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectForAlias(t *testing.T) {
	got := detect(t, `<div><p v-for="(1a, in) in xs"></p></div>`)
	want := []string{
		`invalid v-for alias "1a" in expression: v-for="(1a, in) in xs"`,
		`invalid v-for iterator "in" in expression: v-for="(1a, in) in xs"`,
	}
	msgs := make([]string, 0, len(got))
	for _, d := range got {
		msgs = append(msgs, d.Message)
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectSkipsPre(t *testing.T) {
	if got := detect(t, `<div v-pre><p :a="1 + 2">{{ for }}</p></div>`); len(got) != 0 {
		t.Fatalf("v-pre subtree checked: %v", got)
	}
}

func TestDetectNilInputs(t *testing.T) {
	Detect(nil, diag.NopReporter{})
	Detect(ast.NewElement("div", nil), nil)
}

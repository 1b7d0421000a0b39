package options

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tmplc/internal/ast"
	"tmplc/internal/diag"
	"tmplc/internal/source"
)

func directive(tag string, calls *[]string) DirectiveFunc {
	return func(*ast.Node, ast.Directive, *Config) bool {
		*calls = append(*calls, tag)
		return false
	}
}

func moduleNames(mods []*Module) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.Name)
	}
	return out
}

func TestMergeModulesConcatenateInOrder(t *testing.T) {
	m0 := &Module{Name: "m0"}
	m1 := &Module{Name: "m1"}
	base := &Options{Modules: []*Module{m0}}
	cfg := Merge(base, &Options{Modules: []*Module{m1}})

	if diff := cmp.Diff([]string{"m0", "m1"}, moduleNames(cfg.Modules())); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
	if len(base.Modules) != 1 || base.Modules[0] != m0 {
		t.Fatalf("base modules mutated: %v", moduleNames(base.Modules))
	}
}

func TestMergeModulesDoNotAliasBaseArray(t *testing.T) {
	mods := make([]*Module, 1, 4)
	mods[0] = &Module{Name: "m0"}
	base := &Options{Modules: mods}

	Merge(base, &Options{Modules: []*Module{{Name: "a"}}})
	Merge(base, &Options{Modules: []*Module{{Name: "b"}}})

	spare := base.Modules[:2]
	if spare[1] != nil {
		t.Fatalf("merge wrote into base's spare capacity: %q", spare[1].Name)
	}
}

func TestMergeModulesAbsentSides(t *testing.T) {
	if got := Merge(nil, nil).Modules(); len(got) != 0 {
		t.Fatalf("nil/nil modules = %v", moduleNames(got))
	}
	only := &Module{Name: "only"}
	if got := Merge(nil, &Options{Modules: []*Module{only}}).Modules(); len(got) != 1 || got[0] != only {
		t.Fatalf("override-only modules = %v", moduleNames(got))
	}
	if got := Merge(&Options{Modules: []*Module{only}}, &Options{}).Modules(); len(got) != 1 || got[0] != only {
		t.Fatalf("base-only modules = %v", moduleNames(got))
	}
}

func TestMergeDirectivesFallBackPerName(t *testing.T) {
	var calls []string
	base := &Options{Directives: map[string]DirectiveFunc{
		"a":      directive("base-a", &calls),
		"shared": directive("base-shared", &calls),
	}}
	override := &Options{Directives: map[string]DirectiveFunc{
		"b":      directive("over-b", &calls),
		"shared": directive("over-shared", &calls),
	}}
	cfg := Merge(base, override)

	for _, name := range []string{"a", "b", "shared"} {
		fn, ok := cfg.Directive(name)
		if !ok {
			t.Fatalf("directive %q not resolved", name)
		}
		fn(nil, ast.Directive{}, cfg)
	}
	if _, ok := cfg.Directive("missing"); ok {
		t.Fatalf("missing directive resolved")
	}
	if diff := cmp.Diff([]string{"base-a", "over-b", "over-shared"}, calls); diff != "" {
		t.Fatalf("directive resolution mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "shared"}, cfg.Directives().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if len(base.Directives) != 2 {
		t.Fatalf("base directives mutated: %d entries", len(base.Directives))
	}
	if _, ok := base.Directives["b"]; ok {
		t.Fatalf("override directive leaked into base")
	}
}

func TestMergeFlatOverrideAndFallback(t *testing.T) {
	base := &Options{
		Optimize:   Bool(false),
		Comments:   Bool(true),
		Delimiters: &Delimiters{Open: "[[", Close: "]]"},
		IsUnaryTag: func(tag string) bool { return tag == "br" },
		Extra:      map[string]any{"scope": "base", "keep": 1},
	}
	override := &Options{
		Optimize:   Bool(true),
		Whitespace: WhitespaceCondense,
		Extra:      map[string]any{"scope": "over", "new": true},
	}
	cfg := Merge(base, override)

	if !cfg.Optimize() {
		t.Errorf("Optimize: override must win")
	}
	if !cfg.Comments() {
		t.Errorf("Comments: base must be inherited")
	}
	if got := cfg.Delimiters(); got != (Delimiters{Open: "[[", Close: "]]"}) {
		t.Errorf("Delimiters = %+v", got)
	}
	if cfg.Whitespace() != WhitespaceCondense {
		t.Errorf("Whitespace = %q", cfg.Whitespace())
	}
	if !cfg.IsUnaryTag("br") || cfg.IsUnaryTag("div") {
		t.Errorf("IsUnaryTag must fall back to base")
	}
	for key, want := range map[string]any{"scope": "over", "keep": 1, "new": true} {
		if got, ok := cfg.Value(key); !ok || got != want {
			t.Errorf("Value(%q) = %v, %v; want %v", key, got, ok, want)
		}
	}
}

func TestMergeDefaults(t *testing.T) {
	cfg := Merge(nil, nil)
	if !cfg.Optimize() || !cfg.PreserveWhitespace() || cfg.Comments() || cfg.OutputSourceRange() {
		t.Fatalf("unexpected boolean defaults")
	}
	if cfg.Delimiters() != (Delimiters{Open: "{{", Close: "}}"}) || cfg.HasCustomDelimiters() {
		t.Fatalf("unexpected delimiter defaults: %+v", cfg.Delimiters())
	}
	if cfg.IsReservedTag("div") {
		t.Fatalf("predicates default to false")
	}
	cfg.Warn("ignored", source.Range{}, false) // no reporter installed
}

func TestConfigMutationNeverTouchesBase(t *testing.T) {
	base := &Options{Extra: map[string]any{"k": "base"}}
	cfg := Merge(base, nil)

	col := diag.NewCollector(diag.ModePlain, 0)
	cfg.SetReporter(col)
	cfg.Set("k", "local")
	cfg.Warn("hello", source.Range{}, true)

	if v, _ := cfg.Value("k"); v != "local" {
		t.Fatalf("local value not visible: %v", v)
	}
	if base.Extra["k"] != "base" || len(base.Extra) != 1 {
		t.Fatalf("base extra mutated: %v", base.Extra)
	}
	if again, _ := Merge(base, nil).Value("k"); again != "base" {
		t.Fatalf("fresh merge sees %v", again)
	}
	if len(col.Tips()) != 1 {
		t.Fatalf("warn did not reach the reporter")
	}
}

func TestStaticKeysIncludeModules(t *testing.T) {
	base := &Options{
		StaticKeys: []string{"staticAttr"},
		Modules:    []*Module{{Name: "class", StaticKeys: []string{"staticClass"}}},
	}
	cfg := Merge(base, &Options{Modules: []*Module{{Name: "style", StaticKeys: []string{"staticStyle"}}}})
	if diff := cmp.Diff([]string{"staticAttr", "staticClass", "staticStyle"}, cfg.StaticKeys()); diff != "" {
		t.Fatalf("static keys mismatch (-want +got):\n%s", diff)
	}
}

func TestBeginPhaseNotifiesObserver(t *testing.T) {
	var events []PhaseEvent
	cfg := Merge(nil, &Options{OnPhase: func(ev PhaseEvent) { events = append(events, ev) }})
	boom := errors.New("boom")

	cfg.BeginPhase("parse")(nil)
	cfg.BeginPhase("generate")(boom)

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[0].Phase != "parse" || events[0].Done || !events[1].Done || events[1].Err != nil {
		t.Fatalf("unexpected parse events: %+v", events[:2])
	}
	if !errors.Is(events[3].Err, boom) {
		t.Fatalf("generate end event lost error: %+v", events[3])
	}
}

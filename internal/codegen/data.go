package codegen

import (
	"strconv"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/expr"
	"tmplc/internal/options"
)

// baseDirectives are consulted after the configured directive chain.
var baseDirectives = map[string]options.DirectiveFunc{
	"cloak": func(*ast.Node, ast.Directive, *options.Config) bool { return false },
}

func (g *Generator) directive(name string) (options.DirectiveFunc, bool) {
	if fn, ok := g.cfg.Directive(name); ok {
		return fn, true
	}
	fn, ok := baseDirectives[name]
	return fn, ok
}

// Data emits the data object of an element, or "" when it has none.
func (g *Generator) Data(n *ast.Node) (string, error) {
	var entries []string

	// директивы первыми: они могут дописать props в узел
	if dirs := g.genDirectives(n); dirs != "" {
		entries = append(entries, "directives:"+dirs)
	}
	if n.Key != "" {
		entries = append(entries, "key:"+expr.Code(n.Key))
	}
	if n.Pre {
		entries = append(entries, "pre:true")
	}
	for _, m := range g.cfg.Modules() {
		if m.GenData == nil {
			continue
		}
		for _, e := range m.GenData(n) {
			entries = append(entries, e.Key+":"+e.Code)
		}
	}
	if attrs := genAttrs(n); attrs != "" {
		entries = append(entries, "attrs:"+attrs)
	}
	if len(n.Props) > 0 {
		entries = append(entries, "domProps:"+genProps(n.Props))
	}
	if len(n.Events) > 0 {
		entries = append(entries, "on:"+genProps(codeAttrs(n.Events)))
	}
	if len(entries) == 0 {
		return "", nil
	}
	return "{" + strings.Join(entries, ",") + "}", nil
}

func (g *Generator) genDirectives(n *ast.Node) string {
	var out []string
	for _, d := range n.Directives {
		needRuntime := true
		if fn, ok := g.directive(d.Name); ok {
			needRuntime = fn(n, d, g.cfg)
		}
		if !needRuntime {
			continue
		}
		fields := []string{
			"name:" + strconv.Quote(d.Name),
			"rawName:" + strconv.Quote(d.RawName),
		}
		if d.Value != "" {
			fields = append(fields, "value:"+expr.Code(d.Value), "expression:"+strconv.Quote(d.Value))
		}
		if d.Arg != "" {
			fields = append(fields, "arg:"+strconv.Quote(d.Arg))
		}
		out = append(out, "{"+strings.Join(fields, ",")+"}")
	}
	if len(out) == 0 {
		return ""
	}
	return "[" + strings.Join(out, ",") + "]"
}

func genAttrs(n *ast.Node) string {
	if len(n.Attrs) == 0 && len(n.Bindings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(n.Attrs)+len(n.Bindings))
	for _, a := range n.Attrs {
		parts = append(parts, strconv.Quote(a.Name)+":"+strconv.Quote(a.Value))
	}
	for _, a := range n.Bindings {
		parts = append(parts, strconv.Quote(a.Name)+":"+expr.Code(a.Value))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// genProps emits attributes whose Value already is code.
func genProps(props []ast.Attr) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, strconv.Quote(p.Name)+":"+p.Value)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func codeAttrs(attrs []ast.Attr) []ast.Attr {
	out := make([]ast.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = a
		out[i].Value = expr.Code(a.Value)
	}
	return out
}

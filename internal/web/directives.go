package web

import (
	"tmplc/internal/ast"
	"tmplc/internal/expr"
	"tmplc/internal/options"
)

// Text compiles v-text into a textContent DOM property.
func Text(n *ast.Node, d ast.Directive, _ *options.Config) bool {
	if d.Value != "" {
		n.Props = append(n.Props, ast.Attr{Name: "textContent", Value: "_s(" + expr.Code(d.Value) + ")", Start: d.Start, End: d.End})
	}
	return false
}

// HTML compiles v-html into an innerHTML DOM property.
func HTML(n *ast.Node, d ast.Directive, _ *options.Config) bool {
	if d.Value != "" {
		n.Props = append(n.Props, ast.Attr{Name: "innerHTML", Value: "_s(" + expr.Code(d.Value) + ")", Start: d.Start, End: d.End})
	}
	return false
}

// Directives returns the compile-time directives of the web flavour.
func Directives() map[string]options.DirectiveFunc {
	return map[string]options.DirectiveFunc{
		"text": Text,
		"html": HTML,
	}
}

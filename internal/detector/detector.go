// Package detector inspects a finished AST for expressions the render
// language cannot evaluate. It runs after the pipeline, in development mode
// only, and reports through the same warn capability as the stages.
package detector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/diag"
	"tmplc/internal/expr"
	"tmplc/internal/source"
)

// Detect walks root and reports every invalid expression.
func Detect(root *ast.Node, r diag.Reporter) {
	if root == nil || r == nil {
		return
	}
	d := detector{r: r}
	ast.Walk(root, d.visit)
}

type detector struct {
	r diag.Reporter
}

func (d detector) visit(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindElement:
		if n.Pre {
			return false
		}
		d.checkElement(n)
	case ast.KindExpression:
		for _, t := range n.Tokens {
			if t.Interp {
				d.checkExpression(t.Text, "{{"+t.Text+"}}", source.Span(n.Start, n.End))
			}
		}
	}
	return true
}

// sortedAttrs returns raw attributes in source order.
func sortedAttrs(n *ast.Node) []ast.Attr {
	attrs := make([]ast.Attr, 0, len(n.RawAttrs))
	for _, a := range n.RawAttrs {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Start < attrs[j].Start })
	return attrs
}

func (d detector) checkElement(n *ast.Node) {
	for _, a := range sortedAttrs(n) {
		if !isDirective(a.Name) {
			continue
		}
		rng := source.Span(a.Start, a.End)
		text := fmt.Sprintf("%s=%q", a.Name, a.Value)
		switch {
		case a.Name == "v-for":
			d.checkFor(n, text, rng)
		case strings.HasPrefix(a.Name, "@") || strings.HasPrefix(a.Name, "v-on:"):
			d.checkEvent(a.Value, text, rng)
		case strings.TrimSpace(a.Value) == "":
			// v-else, v-pre, v-cloak и пустые биндинги (о них уже сообщил парсер)
		default:
			d.checkExpression(a.Value, text, rng)
		}
	}
}

func isDirective(name string) bool {
	return strings.HasPrefix(name, "v-") || strings.HasPrefix(name, ":") || strings.HasPrefix(name, "@")
}

func (d detector) checkFor(n *ast.Node, text string, rng source.Range) {
	if n.For == "" {
		// парсер уже сообщил о некорректном v-for
		return
	}
	d.checkExpression(n.For, text, rng)
	d.checkIdentifier(n.Alias, "alias", text, rng)
	d.checkIdentifier(n.Iterator, "iterator", text, rng)
}

func (d detector) checkIdentifier(ident, kind, text string, rng source.Range) {
	if ident == "" {
		return
	}
	if !expr.IsIdent(ident) || expr.IsKeyword(ident) {
		d.r.Warn(fmt.Sprintf("invalid v-for %s %q in expression: %s", kind, ident, strings.TrimSpace(text)), rng, false)
	}
}

func (d detector) checkEvent(handler, text string, rng source.Range) {
	if strings.TrimSpace(handler) == "" {
		return
	}
	first := strings.TrimLeft(strings.TrimSpace(handler), "!")
	for _, op := range []string{"delete", "typeof", "void"} {
		if first == op || strings.HasPrefix(first, op+" ") || strings.HasPrefix(first, op+"(") {
			d.r.Warn(fmt.Sprintf("avoid using JavaScript unary operator as property name: %q in expression %s",
				op, strings.TrimSpace(text)), rng, false)
			return
		}
	}
	d.checkExpression(handler, text, rng)
}

func (d detector) checkExpression(exp, text string, rng source.Range) {
	_, err := expr.Parse(exp)
	if err == nil {
		return
	}
	var kw *expr.KeywordError
	switch {
	case errors.As(err, &kw):
		d.r.Warn(fmt.Sprintf("%s\n  Raw expression: %s", kw.Error(), strings.TrimSpace(text)), rng, false)
	case errors.Is(err, expr.ErrEmpty):
		d.r.Warn(fmt.Sprintf("empty expression\n  Raw expression: %s", strings.TrimSpace(text)), rng, false)
	default:
		d.r.Warn(fmt.Sprintf("invalid expression: %v in\n\n    %s\n\n  Raw expression: %s\n",
			err, exp, strings.TrimSpace(text)), rng, false)
	}
}

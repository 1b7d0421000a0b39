// Package codegen is the default generate stage. It turns an optimized AST
// into render code, a small call language evaluated by internal/render:
//
//	_c(tag, data, children)   element
//	_v(text)                  text node
//	_s(value)                 to display string
//	_t(parts...)              string concatenation
//	_e(text?)                 comment, or empty node without text
//	_m(index, inFor?)         static render fn
//	_if(cond, then, else)     conditional, lazy
//	_l(list, alias, iterator, body)
//	_not(x)
//	_ssr(html)                pre-rendered markup
//
// Data objects use {key: value} literals, child lists use [a, b].
package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/expr"
	"tmplc/internal/options"
)

// ErrUnknownNode is returned for node kinds codegen cannot emit.
var ErrUnknownNode = errors.New("unknown node kind")

// EmptyRender is the render code for a template without elements.
const EmptyRender = `_c("div")`

// Code is the generate stage output.
type Code struct {
	Render          string
	StaticRenderFns []string
}

// NodeHook may take over emission of a node. It reports false to fall back
// to the default rules.
type NodeHook func(g *Generator, n *ast.Node) (string, bool)

// Option configures a Generator.
type Option func(*Generator)

// WithNodeHook installs a hook consulted before every node.
func WithNodeHook(h NodeHook) Option {
	return func(g *Generator) {
		g.hook = h
	}
}

const (
	doneStatic uint8 = 1 << iota
	doneFor
	doneIf
)

// Generator holds per-call state. It is not reusable across calls.
type Generator struct {
	cfg    *options.Config
	hook   NodeHook
	static []string
	done   map[*ast.Node]uint8
}

// Generate emits render code for root.
func Generate(root *ast.Node, cfg *options.Config, opts ...Option) (Code, error) {
	g := &Generator{cfg: cfg, done: make(map[*ast.Node]uint8)}
	for _, opt := range opts {
		opt(g)
	}
	if root == nil {
		return Code{Render: EmptyRender, StaticRenderFns: []string{}}, nil
	}
	render, err := g.Element(root)
	if err != nil {
		return Code{}, err
	}
	return Code{Render: render, StaticRenderFns: append([]string{}, g.static...)}, nil
}

// Node emits any node kind.
func (g *Generator) Node(n *ast.Node) (string, error) {
	switch n.Kind {
	case ast.KindElement:
		return g.Element(n)
	case ast.KindText:
		if g.hook != nil {
			if code, ok := g.hook(g, n); ok {
				return code, nil
			}
		}
		return "_v(" + strconv.Quote(n.Text) + ")", nil
	case ast.KindExpression:
		return "_v(" + Interpolation(n.Tokens) + ")", nil
	case ast.KindComment:
		return "_e(" + strconv.Quote(n.Text) + ")", nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownNode, n.Kind)
}

// Element emits an element with its static, for and if wrappers.
func (g *Generator) Element(n *ast.Node) (string, error) {
	state := g.done[n]
	switch {
	case n.StaticRoot && state&doneStatic == 0:
		return g.genStatic(n)
	case n.For != "" && state&doneFor == 0:
		return g.genFor(n)
	case n.If != "" && state&doneIf == 0:
		return g.genIf(n)
	}
	if g.hook != nil {
		if code, ok := g.hook(g, n); ok {
			return code, nil
		}
	}

	data, err := g.Data(n)
	if err != nil {
		return "", err
	}
	children, err := g.Children(n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("_c(")
	b.WriteString(strconv.Quote(n.Tag))
	if data != "" || children != "" {
		b.WriteByte(',')
		if data == "" {
			b.WriteString("null")
		} else {
			b.WriteString(data)
		}
	}
	if children != "" {
		b.WriteByte(',')
		b.WriteString(children)
	}
	b.WriteByte(')')
	return b.String(), nil
}

func (g *Generator) genStatic(n *ast.Node) (string, error) {
	g.done[n] |= doneStatic
	code, err := g.Element(n)
	if err != nil {
		return "", err
	}
	n.StaticIndex = len(g.static)
	g.static = append(g.static, code)
	if n.StaticInFor {
		return fmt.Sprintf("_m(%d,true)", n.StaticIndex), nil
	}
	return fmt.Sprintf("_m(%d)", n.StaticIndex), nil
}

func (g *Generator) genFor(n *ast.Node) (string, error) {
	g.done[n] |= doneFor
	body, err := g.Element(n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("_l(%s,%s,%s,%s)",
		expr.Code(n.For), strconv.Quote(n.Alias), strconv.Quote(n.Iterator), body), nil
}

func (g *Generator) genIf(n *ast.Node) (string, error) {
	g.done[n] |= doneIf
	return g.genIfConditions(n.IfConditions)
}

func (g *Generator) genIfConditions(conds []ast.IfCondition) (string, error) {
	if len(conds) == 0 {
		return "_e()", nil
	}
	c := conds[0]
	block, err := g.ifBlock(c.Block)
	if err != nil {
		return "", err
	}
	if c.Exp == "" {
		return block, nil
	}
	rest, err := g.genIfConditions(conds[1:])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("_if(%s,%s,%s)", expr.Code(c.Exp), block, rest), nil
}

func (g *Generator) ifBlock(n *ast.Node) (string, error) {
	g.done[n] |= doneIf
	return g.Element(n)
}

// Children emits the child list of n, or "" when it has none.
func (g *Generator) Children(n *ast.Node) (string, error) {
	if len(n.Children) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		code, err := g.Node(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, code)
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}

// Interpolation renders text tokens as a _t call.
func Interpolation(tokens []ast.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Interp {
			parts = append(parts, "_s("+expr.Code(t.Text)+")")
			continue
		}
		parts = append(parts, strconv.Quote(t.Text))
	}
	return "_t(" + strings.Join(parts, ",") + ")"
}

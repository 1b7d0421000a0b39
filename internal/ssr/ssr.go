// Package ssr is the server-rendering flavour of the web compiler. It shares
// the parser, detector, base options and creator wiring with package web;
// only the optimize and generate stages differ: fully static element
// subtrees are pre-rendered to markup and emitted as _ssr("...") calls
// instead of being hoisted into static render fns.
package ssr

import (
	"strconv"

	"tmplc/internal/ast"
	"tmplc/internal/codegen"
	"tmplc/internal/compiler"
	"tmplc/internal/optimizer"
	"tmplc/internal/options"
	"tmplc/internal/parser"
	"tmplc/internal/vdom"
	"tmplc/internal/web"
)

// Optimize runs the default optimizer and then marks string-renderable
// subtrees. Marked nodes are no longer static roots.
func Optimize(root *ast.Node, cfg *options.Config) {
	optimizer.Optimize(root, cfg)
	ast.Walk(root, func(n *ast.Node) bool {
		if n.IsElement() && n.Static && !n.Forbidden {
			n.SSRString = true
			n.StaticRoot = false
			return false
		}
		return true
	})
}

// Generate emits render code with marked subtrees collapsed into markup.
func Generate(root *ast.Node, cfg *options.Config) (codegen.Code, error) {
	return codegen.Generate(root, cfg, codegen.WithNodeHook(stringHook))
}

func stringHook(_ *codegen.Generator, n *ast.Node) (string, bool) {
	if !n.SSRString {
		return "", false
	}
	return "_ssr(" + strconv.Quote(Markup(n)) + ")", true
}

// Markup renders a static subtree exactly as the web render path would.
func Markup(n *ast.Node) string {
	return toVNode(n).HTML()
}

func toVNode(n *ast.Node) *vdom.VNode {
	switch n.Kind {
	case ast.KindComment:
		return vdom.NewComment(n.Text)
	case ast.KindText:
		return vdom.NewText(n.Text)
	case ast.KindExpression:
		// выражения в статике не встречаются; оставляем исходный текст
		return vdom.NewText(n.Text)
	}
	vn := &vdom.VNode{Tag: n.Tag, Data: map[string]any{}}
	if s, ok := unquoted(n, web.KeyStaticClass); ok {
		vn.Data["staticClass"] = s
	}
	if s, ok := unquoted(n, web.KeyStaticStyle); ok {
		vn.Data["staticStyle"] = s
	}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]any, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		vn.Data["attrs"] = attrs
	}
	for _, c := range n.Children {
		vn.Children = append(vn.Children, toVNode(c))
	}
	return vn
}

func unquoted(n *ast.Node, key string) (string, bool) {
	code, ok := n.ModuleData[key]
	if !ok {
		return "", false
	}
	s, err := strconv.Unquote(code)
	return s, err == nil
}

// Stages returns the SSR stage bundle.
func Stages() compiler.Stages {
	return compiler.Stages{
		Parse:    parser.Parse,
		Optimize: Optimize,
		Generate: Generate,
	}
}

// NewCreator returns the SSR creator with the same defaults as web.NewCreator.
func NewCreator(mode compiler.Mode, opts ...compiler.CreatorOption) *compiler.Creator {
	return compiler.NewCreator(Stages().BaseCompile(), web.Defaults(mode, opts...)...)
}

// NewCompiler returns an SSR compiler over web.BaseOptions.
func NewCompiler(mode compiler.Mode, opts ...compiler.CreatorOption) *compiler.Compiler {
	return NewCreator(mode, opts...).New(web.BaseOptions())
}

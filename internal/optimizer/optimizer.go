// Package optimizer is the default optimize stage. It marks subtrees that
// never change between renders so codegen can hoist them.
package optimizer

import (
	"tmplc/internal/ast"
	"tmplc/internal/options"
)

// builtInTags are never static: they are resolved at runtime.
var builtInTags = map[string]bool{"slot": true, "component": true}

// Optimize marks static nodes and static roots in place.
func Optimize(root *ast.Node, cfg *options.Config) {
	if root == nil {
		return
	}
	o := &optimizer{cfg: cfg, staticKeys: make(map[string]bool)}
	for _, k := range cfg.StaticKeys() {
		o.staticKeys[k] = true
	}
	o.markStatic(root)
	o.markStaticRoots(root, false)
}

type optimizer struct {
	cfg        *options.Config
	staticKeys map[string]bool
}

func (o *optimizer) markStatic(n *ast.Node) {
	n.Static = o.isStatic(n)
	if !n.IsElement() {
		return
	}
	// дети компонентов не трогаем: их содержимое уходит в слоты
	if !o.cfg.IsReservedTag(n.Tag) && !builtInTags[n.Tag] {
		return
	}
	for _, c := range n.Children {
		o.markStatic(c)
		if !c.Static {
			n.Static = false
		}
	}
	for i := 1; i < len(n.IfConditions); i++ {
		b := n.IfConditions[i].Block
		o.markStatic(b)
		if !b.Static {
			n.Static = false
		}
	}
}

func (o *optimizer) markStaticRoots(n *ast.Node, inFor bool) {
	if !n.IsElement() {
		return
	}
	if n.Static {
		n.StaticInFor = inFor
	}
	if n.Static && len(n.Children) > 0 && !(len(n.Children) == 1 && n.Children[0].Kind == ast.KindText) {
		n.StaticRoot = true
		return
	}
	n.StaticRoot = false
	inFor = inFor || n.For != ""
	for _, c := range n.Children {
		o.markStaticRoots(c, inFor)
	}
	for i := 1; i < len(n.IfConditions); i++ {
		o.markStaticRoots(n.IfConditions[i].Block, inFor)
	}
}

func (o *optimizer) isStatic(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindExpression:
		return false
	case ast.KindText, ast.KindComment:
		return true
	}
	if n.Pre {
		return true
	}
	if len(n.Bindings) > 0 || len(n.Events) > 0 || len(n.Directives) > 0 {
		return false
	}
	if n.If != "" || n.ElseIf != "" || n.Else || n.For != "" || n.Key != "" {
		return false
	}
	if builtInTags[n.Tag] || !o.cfg.IsReservedTag(n.Tag) {
		return false
	}
	if inTemplateFor(n) {
		return false
	}
	for k := range n.ModuleData {
		if !o.staticKeys[k] {
			return false
		}
	}
	return true
}

func inTemplateFor(n *ast.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Tag != "template" {
			return false
		}
		if p.For != "" {
			return true
		}
	}
	return false
}

package parser

import (
	"fmt"
	"html"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/options"
	"tmplc/internal/source"
)

func (p *parser) openElement(tag string, attrs []ast.Attr, unarySlash bool, start, end int) error {
	lower := strings.ToLower(tag)
	if top := p.top(); top != nil && top.tag == lower && p.cfg.CanBeLeftOpenTag(lower) {
		p.closeTo(len(p.stack)-1, start)
	}
	if len(p.stack) >= maxDepth {
		return fmt.Errorf("%w: more than %d levels at offset %d", ErrNestingTooDeep, maxDepth, start)
	}
	unary := unarySlash || p.cfg.IsUnaryTag(lower)

	el := ast.NewElement(tag, p.parent)
	el.Start, el.End = source.Offset(start), source.Offset(end)
	for _, a := range attrs {
		if _, dup := el.RawAttrs[a.Name]; dup {
			p.warn("duplicate attribute: "+a.Name, source.Span(a.Start, a.End))
		}
		el.AttrsMap[a.Name] = a.Value
		el.RawAttrs[a.Name] = a
	}
	el.Attrs = append([]ast.Attr(nil), attrs...)

	if isForbiddenTag(el) {
		el.Forbidden = true
		p.warn(fmt.Sprintf("Templates should only be responsible for mapping the state to the UI. "+
			"Avoid placing tags with side-effects in your templates, such as <%s>, as they will not be parsed.", tag),
			nodeRange(el))
	}

	for _, m := range p.cfg.Modules() {
		if m.PreTransformNode == nil {
			continue
		}
		if repl := m.PreTransformNode(el, p.cfg); repl != nil {
			el = repl
		}
	}

	if !p.inVPre {
		if _, ok := el.RemoveAttr("v-pre"); ok {
			el.Pre = true
			p.inVPre = true
		}
	}
	if p.cfg.IsPreTag(el.Tag) {
		p.inPre = true
	}
	if p.inVPre {
		el.Plain = !el.Pre && len(el.Attrs) == 0
	} else {
		p.processFor(el)
		p.processIf(el)
	}

	if p.root == nil {
		p.root = el
		p.checkRootConstraints(el)
	}

	if unary {
		p.closeElement(el)
		return nil
	}
	p.parent = el
	p.stack = append(p.stack, openTag{tag: lower, node: el})
	return nil
}

func (p *parser) endTag(name string, start, end int) {
	lower := strings.ToLower(name)
	idx := -1
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].tag == lower {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.warn(fmt.Sprintf("stray end tag </%s> has no matching start tag.", name), span(start, end))
		return
	}
	for i := len(p.stack) - 1; i > idx; i-- {
		n := p.stack[i].node
		p.warn(fmt.Sprintf("tag <%s> has no matching end tag.", n.Tag), nodeRange(n))
	}
	p.closeTo(idx, end)
}

func (p *parser) closeAll(end int) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		n := p.stack[i].node
		p.warn(fmt.Sprintf("tag <%s> has no matching end tag.", n.Tag), nodeRange(n))
	}
	p.closeTo(0, end)
}

// closeTo pops and closes every open element down to stack index idx.
func (p *parser) closeTo(idx, end int) {
	for len(p.stack) > idx {
		n := p.stack[len(p.stack)-1].node
		p.stack = p.stack[:len(p.stack)-1]
		n.End = source.Offset(end)
		p.parent = nil
		if top := p.top(); top != nil {
			p.parent = top.node
		}
		p.closeElement(n)
	}
}

func (p *parser) closeElement(el *ast.Node) {
	p.trimEndingWhitespace(el)
	if !p.inVPre {
		p.processElement(el)
	}

	if len(p.stack) == 0 && el != p.root {
		if p.root.If != "" && (el.ElseIf != "" || el.Else) {
			p.checkRootConstraints(el)
			p.root.AddIfCondition(el.ElseIf, el)
		} else if !p.warnedRoot {
			p.warnedRoot = true
			p.warn("Component template should contain exactly one root element. "+
				"If you are using v-if on multiple elements, use v-else-if to chain them instead.", nodeRange(el))
		}
	}

	if p.parent != nil && !el.Forbidden {
		if el.ElseIf != "" || el.Else {
			p.processIfConditions(el, p.parent)
		} else {
			el.Parent = p.parent
			p.parent.Children = append(p.parent.Children, el)
		}
	}

	p.trimEndingWhitespace(el)
	if el.Pre {
		p.inVPre = false
	}
	if p.cfg.IsPreTag(el.Tag) {
		p.inPre = false
	}
	for _, m := range p.cfg.Modules() {
		if m.PostTransformNode != nil {
			m.PostTransformNode(el, p.cfg)
		}
	}
}

func (p *parser) trimEndingWhitespace(el *ast.Node) {
	if p.inPre {
		return
	}
	for len(el.Children) > 0 {
		last := el.Children[len(el.Children)-1]
		if last.Kind != ast.KindText || last.Text != " " {
			return
		}
		el.Children = el.Children[:len(el.Children)-1]
	}
}

func (p *parser) chars(text string, start, end int, raw bool) {
	parent := p.parent
	if parent == nil {
		if start == 0 && end == len(p.src) {
			p.warn("Component template requires a root element, rather than just text.", span(start, end))
		} else if t := strings.TrimSpace(text); t != "" {
			p.warn(fmt.Sprintf("text %q outside root element will be ignored.", t), span(start, end))
		}
		return
	}
	if !raw {
		text = html.UnescapeString(text)
	}

	condense := p.cfg.Whitespace() == options.WhitespaceCondense
	switch {
	case p.inPre || strings.TrimSpace(text) != "":
		if condense && !p.inPre {
			text = collapseSpace(text)
		}
	case len(parent.Children) == 0:
		text = ""
	case condense:
		if strings.ContainsAny(text, "\r\n") {
			text = ""
		} else {
			text = " "
		}
	case p.cfg.PreserveWhitespace():
		text = " "
	default:
		text = ""
	}
	if text == "" {
		return
	}

	node := &ast.Node{
		Kind:        ast.KindText,
		Text:        text,
		Parent:      parent,
		Start:       source.Offset(start),
		End:         source.Offset(end),
		StaticIndex: -1,
	}
	if !p.inVPre && !raw && text != " " {
		if tokens, ok := ParseText(text, p.delims); ok {
			node.Kind = ast.KindExpression
			node.Tokens = tokens
		}
	}
	if text == " " && len(parent.Children) > 0 {
		if last := parent.Children[len(parent.Children)-1]; last.Kind == ast.KindText && last.Text == " " {
			return
		}
	}
	parent.Children = append(parent.Children, node)
}

func (p *parser) comment(text string, start, end int) {
	if p.parent == nil || !p.cfg.Comments() {
		return
	}
	p.parent.Children = append(p.parent.Children, &ast.Node{
		Kind:        ast.KindComment,
		Text:        text,
		Parent:      p.parent,
		Start:       source.Offset(start),
		End:         source.Offset(end),
		StaticIndex: -1,
	})
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteByte(s[i])
			space = false
		}
	}
	return b.String()
}

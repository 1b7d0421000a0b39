package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/options"
	"tmplc/internal/source"
)

var (
	forAliasRE    = regexp.MustCompile(`^\s*([\s\S]*?)\s+(?:in|of)\s+([\s\S]*?)\s*$`)
	stripParensRE = regexp.MustCompile(`^\(|\)$`)
)

// ParseText splits text into literal and interpolation tokens. It reports
// false when text has no interpolation.
func ParseText(text string, d options.Delimiters) ([]ast.Token, bool) {
	var tokens []ast.Token
	found := false
	for text != "" {
		open := strings.Index(text, d.Open)
		if open < 0 {
			break
		}
		rest := text[open+len(d.Open):]
		closeAt := strings.Index(rest, d.Close)
		if closeAt < 0 {
			break
		}
		if open > 0 {
			tokens = append(tokens, ast.Token{Text: text[:open]})
		}
		tokens = append(tokens, ast.Token{Text: strings.TrimSpace(rest[:closeAt]), Interp: true})
		found = true
		text = rest[closeAt+len(d.Close):]
	}
	if !found {
		return nil, false
	}
	if text != "" {
		tokens = append(tokens, ast.Token{Text: text})
	}
	return tokens, true
}

func (p *parser) processFor(el *ast.Node) {
	exp, ok := el.RemoveAttr("v-for")
	if !ok {
		return
	}
	m := forAliasRE.FindStringSubmatch(exp)
	if m == nil {
		p.warn("Invalid v-for expression: "+exp, attrRange(el, "v-for"))
		return
	}
	alias := strings.TrimSpace(stripParensRE.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	parts := strings.Split(alias, ",")
	if len(parts) > 2 {
		p.warn("Invalid v-for expression: "+exp, attrRange(el, "v-for"))
		return
	}
	el.For = m[2]
	el.Alias = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		el.Iterator = strings.TrimSpace(parts[1])
	}
}

func (p *parser) processIf(el *ast.Node) {
	if exp, ok := el.RemoveAttr("v-if"); ok {
		el.If = exp
		if el.If == "" {
			// пустой v-if ведёт себя как всегда ложное условие
			el.If = "false"
		}
		el.AddIfCondition(el.If, el)
		return
	}
	if _, ok := el.RemoveAttr("v-else"); ok {
		el.Else = true
	}
	if exp, ok := el.RemoveAttr("v-else-if"); ok {
		el.ElseIf = exp
		if el.ElseIf == "" {
			el.ElseIf = "false"
		}
	}
}

// processIfConditions attaches a v-else(-if) element to the v-if chain of its
// previous element sibling.
func (p *parser) processIfConditions(el, parent *ast.Node) {
	children := parent.Children
	for len(children) > 0 {
		last := children[len(children)-1]
		if last.IsElement() {
			break
		}
		if t := strings.TrimSpace(last.Text); t != "" {
			p.warn(fmt.Sprintf("text %q between v-if and v-else(-if) will be ignored.", t), nodeRange(last))
		}
		children = children[:len(children)-1]
	}
	parent.Children = children
	if len(children) > 0 && children[len(children)-1].If != "" {
		children[len(children)-1].AddIfCondition(el.ElseIf, el)
		el.Parent = parent
		return
	}
	name := "v-else"
	if el.ElseIf != "" {
		name = "v-else-if"
	}
	p.warn(fmt.Sprintf("%s used on element <%s> without corresponding v-if.", name, el.Tag), attrRange(el, name))
}

func (p *parser) checkRootConstraints(el *ast.Node) {
	if el.Tag == "template" {
		p.warn("Cannot use <template> as component root element because it may contain multiple nodes.", nodeRange(el))
	}
	if _, ok := el.RawAttrs["v-for"]; ok {
		p.warn("Cannot use v-for on stateful component root element because it renders multiple elements.",
			attrRange(el, "v-for"))
	}
}

func (p *parser) processElement(el *ast.Node) {
	p.processKey(el)
	el.Plain = el.Key == "" && len(el.Attrs) == 0
	for _, m := range p.cfg.Modules() {
		if m.TransformNode != nil {
			m.TransformNode(el, p.cfg)
		}
	}
	p.processAttrs(el)
}

func (p *parser) processKey(el *ast.Node) {
	if exp, ok := el.RemoveBindingAttr("key"); ok {
		el.Key = strings.TrimSpace(exp)
	} else if v, ok := el.RemoveAttr("key"); ok {
		el.Key = strconv.Quote(v)
	}
	if el.Key != "" && el.Tag == "template" {
		name := ":key"
		if _, ok := el.RawAttrs[name]; !ok {
			name = "key"
		}
		p.warn("<template> cannot be keyed. Place the key on real elements instead.", attrRange(el, name))
	}
}

func (p *parser) processAttrs(el *ast.Node) {
	plain := el.Attrs[:0]
	for _, a := range el.Attrs {
		rng := source.Span(a.Start, a.End)
		switch {
		case strings.HasPrefix(a.Name, ":") || strings.HasPrefix(a.Name, "v-bind:"):
			name := strings.TrimPrefix(strings.TrimPrefix(a.Name, ":"), "v-bind:")
			value := strings.TrimSpace(a.Value)
			if value == "" {
				p.warn(fmt.Sprintf("The value for a v-bind expression cannot be empty. Found in %q", a.Name), rng)
				continue
			}
			el.Bindings = append(el.Bindings, ast.Attr{Name: name, Value: value, Dynamic: true, Start: a.Start, End: a.End})
		case strings.HasPrefix(a.Name, "@") || strings.HasPrefix(a.Name, "v-on:"):
			name := strings.TrimPrefix(strings.TrimPrefix(a.Name, "@"), "v-on:")
			el.Events = append(el.Events, ast.Attr{Name: name, Value: strings.TrimSpace(a.Value), Dynamic: true, Start: a.Start, End: a.End})
		case strings.HasPrefix(a.Name, "v-"):
			name := strings.TrimPrefix(a.Name, "v-")
			if i := strings.IndexByte(name, '.'); i >= 0 {
				name = name[:i]
			}
			dir := ast.Directive{RawName: a.Name, Value: a.Value, Start: a.Start, End: a.End}
			if i := strings.IndexByte(name, ':'); i >= 0 {
				name, dir.Arg = name[:i], name[i+1:]
			}
			dir.Name = name
			el.Directives = append(el.Directives, dir)
		default:
			if _, ok := ParseText(a.Value, p.delims); ok {
				p.warn(fmt.Sprintf("%s=%q: Interpolation inside attributes has been removed. "+
					"Use v-bind or the colon shorthand instead. For example, instead of "+
					"<div id=\"{{ val }}\">, use <div :id=\"val\">.", a.Name, a.Value), rng)
			}
			plain = append(plain, a)
		}
	}
	el.Attrs = plain
}

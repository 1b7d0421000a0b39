package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"tmplc/internal/vdom"
)

// Load parses render code and its static render fns. The returned functions
// are safe for concurrent use.
func Load(render string, staticRenderFns []string) (vdom.RenderFunc, []vdom.RenderFunc, error) {
	p := &program{}
	for i, code := range staticRenderFns {
		n, err := parseCode(code)
		if err != nil {
			return nil, nil, fmt.Errorf("static render fn %d: %w", i, err)
		}
		p.statics = append(p.statics, n)
	}
	root, err := parseCode(render)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}
	fns := make([]vdom.RenderFunc, len(p.statics))
	for i, n := range p.statics {
		fns[i] = p.renderFunc(n)
	}
	return p.renderFunc(root), fns, nil
}

type program struct {
	statics []node
}

func (p *program) renderFunc(n node) vdom.RenderFunc {
	return func(data map[string]any) (*vdom.VNode, error) {
		v, err := p.eval(n, &scope{data: data})
		if err != nil {
			return nil, err
		}
		return rootNode(v)
	}
}

func rootNode(v any) (*vdom.VNode, error) {
	switch v := v.(type) {
	case *vdom.VNode:
		if v == nil {
			return vdom.NewComment(""), nil
		}
		return v, nil
	case nil:
		return vdom.NewComment(""), nil
	case []*vdom.VNode:
		if len(v) == 1 {
			return v[0], nil
		}
		if len(v) == 0 {
			return vdom.NewComment(""), nil
		}
		return nil, fmt.Errorf("%w: render produced %d root nodes", ErrEval, len(v))
	}
	return nil, fmt.Errorf("%w: render produced %T, not a node", ErrEval, v)
}

// scope holds loop variables over the component data.
type scope struct {
	vars   map[string]any
	parent *scope
	data   map[string]any
}

func (s *scope) lookup(name string) any {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v
		}
		if sc.parent == nil {
			return sc.data[name]
		}
	}
	return nil
}

func (s *scope) with(vars map[string]any) *scope {
	return &scope{vars: vars, parent: s}
}

func (p *program) eval(n node, sc *scope) (any, error) {
	switch n := n.(type) {
	case litNode:
		return n.v, nil
	case pathNode:
		return resolve(sc.lookup(n.path[0]), n.path[1:]), nil
	case arrNode:
		out := make([]any, 0, len(n.elems))
		for _, e := range n.elems {
			v, err := p.eval(e, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case objNode:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			v, err := p.eval(n.vals[i], sc)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case callNode:
		return p.call(n, sc)
	}
	return nil, fmt.Errorf("%w: unknown node %T", ErrEval, n)
}

func resolve(v any, path []string) any {
	for _, key := range path {
		switch cur := v.(type) {
		case map[string]any:
			v = cur[key]
		case []any:
			if key != "length" {
				return nil
			}
			v = float64(len(cur))
		case string:
			if key != "length" {
				return nil
			}
			v = float64(utf8.RuneCountInString(cur))
		default:
			return nil
		}
	}
	return v
}

func (p *program) args(n callNode, sc *scope) ([]any, error) {
	out := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := p.eval(a, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *program) call(n callNode, sc *scope) (any, error) {
	// ленивые формы: аргументы вычисляются по мере надобности
	switch n.name {
	case "_if":
		cond, err := p.eval(n.args[0], sc)
		if err != nil {
			return nil, err
		}
		if vdom.Truthy(cond) {
			return p.eval(n.args[1], sc)
		}
		return p.eval(n.args[2], sc)
	case "_l":
		return p.renderList(n, sc)
	}

	args, err := p.args(n, sc)
	if err != nil {
		return nil, err
	}
	switch n.name {
	case "_c":
		return createElement(args)
	case "_v":
		return vdom.NewText(vdom.Stringify(args[0])), nil
	case "_s":
		return toDisplayString(args[0]), nil
	case "_t":
		var b strings.Builder
		for _, a := range args {
			b.WriteString(vdom.Stringify(a))
		}
		return b.String(), nil
	case "_e":
		if len(args) == 0 {
			return vdom.NewComment(""), nil
		}
		return vdom.NewComment(vdom.Stringify(args[0])), nil
	case "_m":
		idx, ok := args[0].(float64)
		if !ok || idx < 0 || int(idx) >= len(p.statics) || idx != float64(int(idx)) {
			return nil, fmt.Errorf("%w: static render fn %v out of range", ErrEval, args[0])
		}
		return p.eval(p.statics[int(idx)], sc)
	case "_not":
		return !vdom.Truthy(args[0]), nil
	case "_ssr":
		return vdom.NewRaw(vdom.Stringify(args[0])), nil
	}
	return nil, fmt.Errorf("%w: unknown function %s", ErrEval, n.name)
}

func createElement(args []any) (any, error) {
	tag, ok := args[0].(string)
	if !ok || tag == "" {
		return nil, fmt.Errorf("%w: element tag must be a string, got %T", ErrEval, args[0])
	}
	el := &vdom.VNode{Tag: tag}
	if len(args) > 1 && args[1] != nil {
		data, ok := args[1].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: <%s> data must be an object, got %T", ErrEval, tag, args[1])
		}
		el.Data = data
	}
	if len(args) > 2 && args[2] != nil {
		list, ok := args[2].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: <%s> children must be a list, got %T", ErrEval, tag, args[2])
		}
		el.Children = flatten(list)
	}
	return el, nil
}

func flatten(list []any) []*vdom.VNode {
	out := make([]*vdom.VNode, 0, len(list))
	for _, v := range list {
		switch v := v.(type) {
		case *vdom.VNode:
			if v != nil {
				out = append(out, v)
			}
		case []*vdom.VNode:
			out = append(out, v...)
		case string:
			out = append(out, vdom.NewText(v))
		}
	}
	return out
}

func (p *program) renderList(n callNode, sc *scope) (any, error) {
	list, err := p.eval(n.args[0], sc)
	if err != nil {
		return nil, err
	}
	names, err := p.args(callNode{args: n.args[1:3]}, sc)
	if err != nil {
		return nil, err
	}
	alias, _ := names[0].(string)
	iter, _ := names[1].(string)

	var out []*vdom.VNode
	each := func(item, key any) error {
		vars := map[string]any{}
		if alias != "" {
			vars[alias] = item
		}
		if iter != "" {
			vars[iter] = key
		}
		v, err := p.eval(n.args[3], sc.with(vars))
		if err != nil {
			return err
		}
		out = append(out, flatten([]any{v})...)
		return nil
	}

	switch l := list.(type) {
	case []any:
		for i, item := range l {
			if err := each(item, float64(i)); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(l))
		for k := range l {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := each(l[k], k); err != nil {
				return nil, err
			}
		}
	case float64:
		for i := 0; i < int(l); i++ {
			if err := each(float64(i+1), float64(i)); err != nil {
				return nil, err
			}
		}
	case string:
		i := 0
		for _, r := range l {
			if err := each(string(r), float64(i)); err != nil {
				return nil, err
			}
			i++
		}
	}
	return out, nil
}

func toDisplayString(v any) string {
	switch v.(type) {
	case []any, map[string]any:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return vdom.Stringify(v)
}

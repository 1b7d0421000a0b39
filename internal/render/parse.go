// Package render loads generated render code into invocable functions and
// provides the compile-to-functions adapter with its template cache.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

var (
	// ErrSyntax is returned for render code the loader cannot parse.
	ErrSyntax = errors.New("render code syntax error")
	// ErrEval is returned when render code fails against the given data.
	ErrEval = errors.New("render evaluation error")
)

// node is a parsed render-code expression.
type node interface{}

type (
	litNode  struct{ v any }
	pathNode struct{ path []string }
	callNode struct {
		name string
		args []node
	}
	objNode struct {
		keys []string
		vals []node
	}
	arrNode struct{ elems []node }
)

// arity is {min, max}; max < 0 means variadic.
var builtins = map[string][2]int{
	"_c":   {1, 3},
	"_v":   {1, 1},
	"_s":   {1, 1},
	"_t":   {0, -1},
	"_e":   {0, 1},
	"_m":   {1, 2},
	"_if":  {3, 3},
	"_l":   {4, 4},
	"_not": {1, 1},
	"_ssr": {1, 1},
}

type reader struct {
	s   scanner.Scanner
	tok rune
	err error
}

func parseCode(code string) (node, error) {
	r := &reader{}
	r.s.Init(strings.NewReader(code))
	r.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	r.s.IsIdentRune = func(ch rune, i int) bool {
		return ch == '_' || ch == '$' || unicode.IsLetter(ch) || (i > 0 && unicode.IsDigit(ch))
	}
	r.s.Error = func(s *scanner.Scanner, msg string) {
		r.fail("%s", msg)
	}
	r.next()
	n := r.expr()
	if r.err == nil && r.tok != scanner.EOF {
		r.fail("unexpected %s after expression", scanner.TokenString(r.tok))
	}
	if r.err != nil {
		return nil, r.err
	}
	return n, nil
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s at offset %d", ErrSyntax, fmt.Sprintf(format, args...), r.s.Position.Offset)
	}
}

func (r *reader) next() {
	r.tok = r.s.Scan()
}

func (r *reader) expect(tok rune) {
	if r.tok != tok {
		r.fail("expected %s, found %s", scanner.TokenString(tok), scanner.TokenString(r.tok))
		return
	}
	r.next()
}

func (r *reader) expr() node {
	if r.err != nil {
		return nil
	}
	switch r.tok {
	case scanner.String:
		s, err := strconv.Unquote(r.s.TokenText())
		if err != nil {
			r.fail("bad string %s", r.s.TokenText())
			return nil
		}
		r.next()
		return litNode{v: s}
	case scanner.Int, scanner.Float:
		return r.number(false)
	case '-':
		r.next()
		if r.tok != scanner.Int && r.tok != scanner.Float {
			r.fail("expected number after '-'")
			return nil
		}
		return r.number(true)
	case '{':
		return r.object()
	case '[':
		r.next()
		return arrNode{elems: r.list(']')}
	case scanner.Ident:
		return r.ident()
	}
	r.fail("unexpected %s", scanner.TokenString(r.tok))
	return nil
}

func (r *reader) number(neg bool) node {
	f, err := strconv.ParseFloat(r.s.TokenText(), 64)
	if err != nil {
		r.fail("bad number %s", r.s.TokenText())
		return nil
	}
	r.next()
	if neg {
		f = -f
	}
	return litNode{v: f}
}

func (r *reader) ident() node {
	name := r.s.TokenText()
	r.next()
	switch name {
	case "true":
		return litNode{v: true}
	case "false":
		return litNode{v: false}
	case "null", "undefined":
		return litNode{v: nil}
	}
	if r.tok == '(' {
		arity, ok := builtins[name]
		if !ok {
			r.fail("unknown function %s", name)
			return nil
		}
		r.next()
		args := r.list(')')
		if r.err == nil && (len(args) < arity[0] || (arity[1] >= 0 && len(args) > arity[1])) {
			r.fail("%s: wrong number of arguments (%d)", name, len(args))
		}
		return callNode{name: name, args: args}
	}
	path := []string{name}
	for r.tok == '.' && r.err == nil {
		r.next()
		if r.tok != scanner.Ident {
			r.fail("expected property name after '.'")
			return nil
		}
		path = append(path, r.s.TokenText())
		r.next()
	}
	return pathNode{path: path}
}

// list parses comma separated expressions up to and including end.
func (r *reader) list(end rune) []node {
	var out []node
	for r.err == nil && r.tok != end {
		out = append(out, r.expr())
		if r.tok != ',' {
			break
		}
		r.next()
	}
	r.expect(end)
	return out
}

func (r *reader) object() node {
	r.next()
	var obj objNode
	for r.err == nil && r.tok != '}' {
		var key string
		switch r.tok {
		case scanner.Ident:
			key = r.s.TokenText()
		case scanner.String:
			k, err := strconv.Unquote(r.s.TokenText())
			if err != nil {
				r.fail("bad key %s", r.s.TokenText())
				return nil
			}
			key = k
		default:
			r.fail("expected object key, found %s", scanner.TokenString(r.tok))
			return nil
		}
		r.next()
		r.expect(':')
		obj.keys = append(obj.keys, key)
		obj.vals = append(obj.vals, r.expr())
		if r.tok != ',' {
			break
		}
		r.next()
	}
	r.expect('}')
	return obj
}

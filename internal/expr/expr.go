// Package expr parses the expression language allowed inside bindings,
// directives and interpolations:
//
//	expr    := '!'* operand
//	operand := path | string | number | 'true' | 'false' | 'null'
//	path    := ident ('.' ident)*
//
// and renders it into render-code form.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies an operand.
type Kind uint8

const (
	KindPath Kind = iota + 1
	KindString
	KindNumber
	KindBool
	KindNull
)

var (
	// ErrEmpty is returned for blank expressions.
	ErrEmpty = errors.New("empty expression")
	// ErrSyntax is returned for anything outside the grammar.
	ErrSyntax = errors.New("unexpected token")
)

// KeywordError reports a reserved word used as a property name.
type KeywordError struct {
	Word string
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("avoid using JavaScript keyword as property name: %q", e.Word)
}

var keywords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`do if for let new try var case else with await break catch
		class const super throw while yield delete export import return switch default
		extends finally continue debugger function arguments typeof void instanceof in of`) {
		keywords[w] = struct{}{}
	}
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Expr is a parsed expression.
type Expr struct {
	Not   int
	Kind  Kind
	Path  []string
	Value string // literal text: unquoted string, number digits
}

// Parse parses src. Errors wrap ErrEmpty or ErrSyntax, or are *KeywordError.
func Parse(src string) (Expr, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return Expr{}, ErrEmpty
	}
	var e Expr
	for strings.HasPrefix(s, "!") {
		e.Not++
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return Expr{}, fmt.Errorf("%w: missing operand after '!'", ErrSyntax)
	}

	switch c := s[0]; {
	case c == '"':
		v, err := strconv.Unquote(s)
		if err != nil {
			return Expr{}, fmt.Errorf("%w: bad string literal %s", ErrSyntax, s)
		}
		e.Kind, e.Value = KindString, v
	case c == '\'':
		if len(s) < 2 || s[len(s)-1] != '\'' || strings.ContainsRune(s[1:len(s)-1], '\'') {
			return Expr{}, fmt.Errorf("%w: bad string literal %s", ErrSyntax, s)
		}
		e.Kind, e.Value = KindString, s[1:len(s)-1]
	case c == '-' || isDigit(c):
		digits := strings.TrimPrefix(s, "-")
		if _, err := strconv.ParseFloat(s, 64); err != nil || digits == "" || !isDigit(digits[0]) {
			return Expr{}, fmt.Errorf("%w: bad number %s", ErrSyntax, s)
		}
		e.Kind, e.Value = KindNumber, s
	default:
		switch s {
		case "true", "false":
			e.Kind, e.Value = KindBool, s
			return e, nil
		case "null", "undefined":
			e.Kind = KindNull
			return e, nil
		}
		path, err := parsePath(s)
		if err != nil {
			return Expr{}, err
		}
		e.Kind, e.Path = KindPath, path
	}
	return e, nil
}

func parsePath(s string) ([]string, error) {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		if !IsIdent(p) {
			return nil, fmt.Errorf("%w: %q in %s", ErrSyntax, p, s)
		}
		if i == 0 && IsKeyword(p) {
			return nil, &KeywordError{Word: p}
		}
	}
	return parts, nil
}

// IsIdent reports whether s is a valid identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && isDigit(c):
		default:
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Code renders e in render-code form.
func (e Expr) Code() string {
	var inner string
	switch e.Kind {
	case KindPath:
		inner = strings.Join(e.Path, ".")
	case KindString:
		inner = strconv.Quote(e.Value)
	case KindNumber, KindBool:
		inner = e.Value
	default:
		inner = "null"
	}
	for i := 0; i < e.Not; i++ {
		inner = "_not(" + inner + ")"
	}
	return inner
}

// Static reports whether e is a literal with no data dependency.
func (e Expr) Static() bool {
	return e.Kind != KindPath
}

// Code parses src and renders it; unparsable input renders as null so
// generated code stays loadable. Callers that care run the detector.
func Code(src string) string {
	e, err := Parse(src)
	if err != nil {
		return "null"
	}
	return e.Code()
}

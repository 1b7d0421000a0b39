package expr

import (
	"errors"
	"testing"
)

func TestParseAndCode(t *testing.T) {
	tests := []struct {
		src  string
		code string
	}{
		{"msg", "msg"},
		{" user.name ", "user.name"},
		{"!ok", "_not(ok)"},
		{"!!a.b", "_not(_not(a.b))"},
		{"'hi'", `"hi"`},
		{`"a\"b"`, `"a\"b"`},
		{"42", "42"},
		{"-1.5", "-1.5"},
		{"true", "true"},
		{"null", "null"},
		{"$route", "$route"},
	}
	for _, tt := range tests {
		e, err := Parse(tt.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.src, err)
		}
		if got := e.Code(); got != tt.code {
			t.Errorf("Parse(%q).Code() = %s, want %s", tt.src, got, tt.code)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("  "); !errors.Is(err, ErrEmpty) {
		t.Errorf("blank: got %v", err)
	}
	for _, src := range []string{"a +", "a..b", "1a", "'x", "!", "foo()", "a b"} {
		if _, err := Parse(src); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) = %v, want ErrSyntax", src, err)
		}
	}
	var kw *KeywordError
	if _, err := Parse("delete.x"); !errors.As(err, &kw) || kw.Word != "delete" {
		t.Errorf("keyword: got %v", err)
	}
	if _, err := Parse("item.class"); err != nil {
		t.Errorf("keywords are allowed after a dot: %v", err)
	}
}

func TestCodeFallsBackToNull(t *testing.T) {
	if got := Code("a +"); got != "null" {
		t.Fatalf("Code(invalid) = %s", got)
	}
}

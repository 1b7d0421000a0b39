package render

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"tmplc/internal/compiler"
	"tmplc/internal/diag"
	"tmplc/internal/options"
	"tmplc/internal/source"
)

type warning struct {
	msg string
	tip bool
}

type recorder struct {
	mu   sync.Mutex
	msgs []warning
}

func (r *recorder) handler() WarnHandler {
	return func(msg string, tip bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.msgs = append(r.msgs, warning{msg, tip})
	}
}

func countingCompile(res *compiler.Result, calls *int) compiler.CompileFunc {
	var mu sync.Mutex
	return func(string, *options.Options) (*compiler.Result, error) {
		mu.Lock()
		*calls++
		mu.Unlock()
		return res, nil
	}
}

func TestAdapterCachesByDelimitersAndTemplate(t *testing.T) {
	calls := 0
	compile := countingCompile(&compiler.Result{Render: `_c("div")`}, &calls)
	toFns := NewAdapter()(compile)

	first, err := toFns("<div></div>", nil)
	if err != nil {
		t.Fatalf("toFns: %v", err)
	}
	second, err := toFns("<div></div>", nil)
	if err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if first != second || calls != 1 {
		t.Fatalf("expected cached result, calls = %d", calls)
	}

	custom := &options.Options{Delimiters: &options.Delimiters{Open: "[[", Close: "]]"}}
	if _, err := toFns("<div></div>", custom); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if calls != 2 {
		t.Fatalf("different delimiters must miss the cache, calls = %d", calls)
	}

	vn, err := first.Render(nil)
	if err != nil || vn.HTML() != "<div></div>" {
		t.Fatalf("render = %v, %v", vn, err)
	}
}

func TestAdapterCachePerCompileFunc(t *testing.T) {
	calls := 0
	compile := countingCompile(&compiler.Result{Render: `_c("div")`}, &calls)
	adapter := NewAdapter()
	if _, err := adapter(compile)("x", nil); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if _, err := adapter(compile)("x", nil); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if calls != 2 {
		t.Fatalf("each wrapped compile func owns its cache, calls = %d", calls)
	}
}

func TestAdapterReportsPlainErrors(t *testing.T) {
	res := &compiler.Result{
		Render: `_c("div")`,
		Errors: []diag.Diagnostic{{Message: "one"}, {Message: "two"}},
		Tips:   []diag.Diagnostic{{Severity: diag.SevTip, Message: "hint"}},
	}
	rec := &recorder{}
	calls := 0
	toFns := NewAdapter(WithWarnHandler(rec.handler()))(countingCompile(res, &calls))
	if _, err := toFns("<div>", nil); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	want := []warning{
		{"Error compiling template:\n\n<div>\n\n- one\n- two\n", false},
		{"hint", true},
	}
	if len(rec.msgs) != len(want) {
		t.Fatalf("warnings = %+v", rec.msgs)
	}
	for i := range want {
		if rec.msgs[i] != want[i] {
			t.Fatalf("warning %d = %+v, want %+v", i, rec.msgs[i], want[i])
		}
	}
}

func TestAdapterReportsRangedErrorsWithFrame(t *testing.T) {
	res := &compiler.Result{
		Render: `_c("div")`,
		Errors: []diag.Diagnostic{{Message: "bad", Range: source.Span(5, 8)}},
	}
	rec := &recorder{}
	calls := 0
	toFns := NewAdapter(WithWarnHandler(rec.handler()))(countingCompile(res, &calls))
	if _, err := toFns("<div>{{x</div>", nil); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("warnings = %+v", rec.msgs)
	}
	got := rec.msgs[0].msg
	if !strings.HasPrefix(got, "Error compiling template:\n\nbad\n\n1 | <div>{{x</div>") || !strings.Contains(got, "^^^") {
		t.Fatalf("unexpected ranged warning:\n%s", got)
	}
}

func TestAdapterProductionIsSilent(t *testing.T) {
	res := &compiler.Result{Render: `_c("div")`, Errors: []diag.Diagnostic{{Message: "one"}}}
	rec := &recorder{}
	calls := 0
	toFns := NewAdapter(WithMode(compiler.ModeProduction), WithWarnHandler(rec.handler()))(countingCompile(res, &calls))
	if _, err := toFns("<div>", nil); err != nil {
		t.Fatalf("toFns: %v", err)
	}
	if len(rec.msgs) != 0 {
		t.Fatalf("production must not warn: %+v", rec.msgs)
	}
}

func TestAdapterLoadFailure(t *testing.T) {
	rec := &recorder{}
	calls := 0
	toFns := NewAdapter(WithWarnHandler(rec.handler()))(countingCompile(&compiler.Result{Render: `_c(`}, &calls))
	_, err := toFns("<div>", nil)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("error = %v, want ErrSyntax", err)
	}
	if len(rec.msgs) != 1 || !strings.HasPrefix(rec.msgs[0].msg, "Failed to generate render function:") {
		t.Fatalf("warnings = %+v", rec.msgs)
	}
	if _, err := toFns("<div>", nil); err == nil || calls != 2 {
		t.Fatalf("failed builds must not be cached, calls = %d", calls)
	}
}

func TestAdapterCompileError(t *testing.T) {
	boom := errors.New("boom")
	compile := func(string, *options.Options) (*compiler.Result, error) { return nil, boom }
	if _, err := NewAdapter()(compile)("x", nil); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestAdapterConcurrentCallsShareEntry(t *testing.T) {
	calls := 0
	compile := countingCompile(&compiler.Result{Render: `_c("div")`}, &calls)
	toFns := NewAdapter()(compile)
	var wg sync.WaitGroup
	results := make([]*compiler.Functions, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fns, err := toFns("<div></div>", nil)
			if err != nil {
				t.Errorf("toFns: %v", err)
				return
			}
			results[i] = fns
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatalf("concurrent callers must observe the same cached functions")
		}
	}
}

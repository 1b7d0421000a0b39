// Package compiler builds template compilers from a bundle of pipeline
// stages. A Creator binds the stages once; each Compiler made from it owns
// a base configuration and runs the same orchestration: merge options,
// install a diagnostics collector, run the stages, run the detector.
package compiler

import (
	"errors"
	"strconv"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/diag"
	"tmplc/internal/options"
	"tmplc/internal/source"
	"tmplc/internal/trace"
	"tmplc/internal/vdom"
)

// ErrNoFunctions is returned by CompileToFunctions when the creator has no
// compile-to-invocable adapter.
var ErrNoFunctions = errors.New("no compile-to-functions adapter configured")

// Mode selects development or production behaviour.
type Mode uint8

const (
	// ModeDevelopment runs the detector and honours source ranges.
	ModeDevelopment Mode = iota
	// ModeProduction skips the detector and records plain diagnostics.
	ModeProduction
)

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "development"
}

// ParseMode maps "development"/"dev" and "production"/"prod" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "development", "dev":
		return ModeDevelopment, true
	case "production", "prod":
		return ModeProduction, true
	}
	return ModeDevelopment, false
}

// DetectFunc inspects a finished AST and reports through r.
type DetectFunc func(root *ast.Node, r diag.Reporter)

// CompileFunc is the signature of Compiler.Compile.
type CompileFunc func(template string, override *options.Options) (*Result, error)

// Functions is the invocable form of a compiled template.
type Functions struct {
	Render          vdom.RenderFunc
	StaticRenderFns []vdom.RenderFunc
}

// ToFunctionsFunc compiles a template into invocable functions.
type ToFunctionsFunc func(template string, override *options.Options) (*Functions, error)

// FunctionsAdapter wraps a compile function into a ToFunctionsFunc. Caching
// and evaluation belong to the adapter.
type FunctionsAdapter func(compile CompileFunc) ToFunctionsFunc

// CreatorOption configures a Creator.
type CreatorOption func(*Creator)

// WithMode sets the mode; the default is ModeDevelopment.
func WithMode(m Mode) CreatorOption {
	return func(c *Creator) { c.mode = m }
}

// WithDetector sets the post-pipeline detector run in development mode.
func WithDetector(d DetectFunc) CreatorOption {
	return func(c *Creator) { c.detect = d }
}

// WithFunctions sets the compile-to-invocable adapter.
func WithFunctions(a FunctionsAdapter) CreatorOption {
	return func(c *Creator) { c.functions = a }
}

// WithTracer makes compile calls emit trace spans.
func WithTracer(t trace.Tracer) CreatorOption {
	return func(c *Creator) { c.tracer = t }
}

// Creator binds a BaseCompileFunc; New makes compilers from it.
type Creator struct {
	base      BaseCompileFunc
	mode      Mode
	detect    DetectFunc
	functions FunctionsAdapter
	tracer    trace.Tracer
}

// NewCreator returns a Creator for base.
func NewCreator(base BaseCompileFunc, opts ...CreatorOption) *Creator {
	c := &Creator{base: base, tracer: trace.Nop}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the creator's mode.
func (c *Creator) Mode() Mode {
	return c.mode
}

// New returns a Compiler over baseOptions. baseOptions must not be modified
// while the compiler is in use; the compiler itself never modifies it.
func (c *Creator) New(baseOptions *options.Options) *Compiler {
	comp := &Compiler{creator: c, base: baseOptions}
	if c.functions != nil {
		comp.toFunctions = c.functions(comp.Compile)
	}
	return comp
}

// Compiler compiles templates against one base configuration. It is safe
// for concurrent use.
type Compiler struct {
	creator     *Creator
	base        *options.Options
	toFunctions ToFunctionsFunc
}

// Base returns the base configuration.
func (c *Compiler) Base() *options.Options {
	return c.base
}

// Compile turns template into a Result. Diagnostics never fail the call;
// stage errors do.
func (c *Compiler) Compile(template string, override *options.Options) (*Result, error) {
	cr := c.creator
	span := trace.Begin(cr.tracer, trace.ScopeTemplate, "compile", 0)

	cfg := options.Merge(c.base, override)
	cfg.Instrument(cr.tracer, span.ID())

	mode := diag.ModePlain
	if cr.mode == ModeDevelopment && override != nil && override.OutputSourceRange != nil && *override.OutputSourceRange {
		mode = diag.ModeRange
	}
	col := diag.NewCollector(mode, source.LeadingSpace(template))
	cfg.SetReporter(col)

	res, err := cr.base(strings.TrimSpace(template), cfg)
	if err != nil {
		span.Fail(err).End("")
		return nil, err
	}
	if res == nil {
		res = &Result{StaticRenderFns: []string{}}
	}

	if cr.mode == ModeDevelopment && cr.detect != nil {
		end := cfg.BeginPhase("detect")
		cr.detect(res.AST, col)
		end(nil)
	}

	res.Errors = col.Errors()
	res.Tips = col.Tips()
	span.Set("errors", strconv.Itoa(len(res.Errors))).Set("tips", strconv.Itoa(len(res.Tips)))
	span.End("")
	return res, nil
}

// CompileToFunctions compiles template through the configured adapter.
func (c *Compiler) CompileToFunctions(template string, override *options.Options) (*Functions, error) {
	if c.toFunctions == nil {
		return nil, ErrNoFunctions
	}
	return c.toFunctions(template, override)
}

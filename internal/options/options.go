// Package options holds compiler configuration and the merge rules that turn
// a base configuration plus a per-call override into the effective one.
package options

import (
	"time"

	"tmplc/internal/ast"
)

// Delimiters are the interpolation markers in text, "{{" and "}}" by default.
type Delimiters struct {
	Open  string `toml:"open"`
	Close string `toml:"close"`
}

// String returns the cache key form used by the function adapter.
func (d Delimiters) String() string {
	return d.Open + "," + d.Close
}

// WhitespaceMode controls how whitespace-only text is kept.
type WhitespaceMode string

const (
	// WhitespacePreserve keeps whitespace between tags as a single space.
	WhitespacePreserve WhitespaceMode = "preserve"
	// WhitespaceCondense drops whitespace between tags that contains a newline
	// and folds runs of whitespace inside text into one space.
	WhitespaceCondense WhitespaceMode = "condense"
)

// DirectiveFunc generates code-time behaviour for a v-* directive.
// It returns true when the directive must also be kept for runtime.
type DirectiveFunc func(n *ast.Node, dir ast.Directive, cfg *Config) bool

// DataEntry is one key/code pair a module adds to an element's data object.
// Code is already in render-code form.
type DataEntry struct {
	Key  string
	Code string
}

// Module extends parsing and code generation for every element.
// Later modules observe the work of earlier ones.
type Module struct {
	Name       string
	StaticKeys []string

	// PreTransformNode may return a replacement node; nil keeps n.
	PreTransformNode  func(n *ast.Node, cfg *Config) *ast.Node
	TransformNode     func(n *ast.Node, cfg *Config)
	PostTransformNode func(n *ast.Node, cfg *Config)
	GenData           func(n *ast.Node) []DataEntry
}

// PhaseEvent reports the start (Done=false) or end of a pipeline phase.
type PhaseEvent struct {
	Phase   string
	Done    bool
	Err     error
	Elapsed time.Duration
}

// PhaseObserver receives phase events for a compile call.
type PhaseObserver func(PhaseEvent)

// Options is the shape of both the base configuration a compiler is built
// with and the override passed to a single compile call. A nil pointer,
// func, slice or map means the field is absent and falls back to the base.
type Options struct {
	Modules    []*Module
	Directives map[string]DirectiveFunc

	Optimize           *bool
	PreserveWhitespace *bool
	Whitespace         WhitespaceMode
	Comments           *bool
	OutputSourceRange  *bool
	Delimiters         *Delimiters

	IsUnaryTag       func(tag string) bool
	IsPreTag         func(tag string) bool
	IsReservedTag    func(tag string) bool
	CanBeLeftOpenTag func(tag string) bool

	StaticKeys []string
	OnPhase    PhaseObserver

	// Extra carries keys the core does not know about; each key overrides
	// independently.
	Extra map[string]any
}

// Bool returns a pointer to v for optional fields.
func Bool(v bool) *bool {
	return &v
}

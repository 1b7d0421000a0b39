package options

import (
	"sort"

	"tmplc/internal/diag"
	"tmplc/internal/source"
	"tmplc/internal/trace"
)

// DirectiveChain resolves directive names through ordered layers; the first
// layer that defines a name wins.
type DirectiveChain struct {
	layers []map[string]DirectiveFunc
}

// NewDirectiveChain builds a chain from highest to lowest priority, skipping
// nil layers.
func NewDirectiveChain(layers ...map[string]DirectiveFunc) DirectiveChain {
	out := DirectiveChain{}
	for _, l := range layers {
		if l != nil {
			out.layers = append(out.layers, l)
		}
	}
	return out
}

// Lookup returns the directive registered under name.
func (d DirectiveChain) Lookup(name string) (DirectiveFunc, bool) {
	for _, l := range d.layers {
		if fn, ok := l[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Names returns every resolvable directive name, sorted.
func (d DirectiveChain) Names() []string {
	seen := make(map[string]struct{})
	for _, l := range d.layers {
		for name := range l {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Config is the effective configuration of one compile call: the override
// layered over the base. Fields are resolved on lookup, so nothing is copied
// out of base and nothing is ever written back to it.
type Config struct {
	base     *Options
	override *Options

	modules    []*Module
	directives DirectiveChain
	local      map[string]any

	reporter   diag.Reporter
	tracer     trace.Tracer
	parentSpan uint64
}

// Merge layers override over base. Either may be nil.
//
//   - Modules concatenate: base first, then override.
//   - Directives chain: override names shadow base names, the rest fall back.
//   - Every other field present in override wins; absent fields fall back.
func Merge(base, override *Options) *Config {
	c := &Config{base: base, override: override}

	var baseMods, overMods []*Module
	var baseDirs, overDirs map[string]DirectiveFunc
	if base != nil {
		baseMods, baseDirs = base.Modules, base.Directives
	}
	if override != nil {
		overMods, overDirs = override.Modules, override.Directives
	}
	// новый срез, чтобы append никогда не писал в массив base
	c.modules = make([]*Module, 0, len(baseMods)+len(overMods))
	c.modules = append(c.modules, baseMods...)
	c.modules = append(c.modules, overMods...)
	c.directives = NewDirectiveChain(overDirs, baseDirs)
	return c
}

func pick[T any](c *Config, get func(*Options) *T) *T {
	if c.override != nil {
		if v := get(c.override); v != nil {
			return v
		}
	}
	if c.base != nil {
		if v := get(c.base); v != nil {
			return v
		}
	}
	return nil
}

func pickPredicate(c *Config, get func(*Options) func(string) bool) func(string) bool {
	if c.override != nil {
		if fn := get(c.override); fn != nil {
			return fn
		}
	}
	if c.base != nil {
		if fn := get(c.base); fn != nil {
			return fn
		}
	}
	return func(string) bool { return false }
}

// Modules returns the effective module list. Callers must not modify it.
func (c *Config) Modules() []*Module {
	return c.modules
}

// Directives returns the effective directive chain.
func (c *Config) Directives() DirectiveChain {
	return c.directives
}

// Directive looks a directive up through the chain.
func (c *Config) Directive(name string) (DirectiveFunc, bool) {
	return c.directives.Lookup(name)
}

// Optimize reports whether the optimize stage runs. Default true.
func (c *Config) Optimize() bool {
	if v := pick(c, func(o *Options) *bool { return o.Optimize }); v != nil {
		return *v
	}
	return true
}

// PreserveWhitespace reports whether whitespace-only text between tags is
// kept. Default true.
func (c *Config) PreserveWhitespace() bool {
	if v := pick(c, func(o *Options) *bool { return o.PreserveWhitespace }); v != nil {
		return *v
	}
	return true
}

// Whitespace returns the whitespace mode. Default WhitespacePreserve.
func (c *Config) Whitespace() WhitespaceMode {
	if c.override != nil && c.override.Whitespace != "" {
		return c.override.Whitespace
	}
	if c.base != nil && c.base.Whitespace != "" {
		return c.base.Whitespace
	}
	return WhitespacePreserve
}

// Comments reports whether HTML comments are kept in the AST.
func (c *Config) Comments() bool {
	if v := pick(c, func(o *Options) *bool { return o.Comments }); v != nil {
		return *v
	}
	return false
}

// OutputSourceRange reports the effective source-range flag.
func (c *Config) OutputSourceRange() bool {
	if v := pick(c, func(o *Options) *bool { return o.OutputSourceRange }); v != nil {
		return *v
	}
	return false
}

// Delimiters returns the interpolation delimiters.
func (c *Config) Delimiters() Delimiters {
	if v := pick(c, func(o *Options) *Delimiters { return o.Delimiters }); v != nil {
		return *v
	}
	return Delimiters{Open: "{{", Close: "}}"}
}

// HasCustomDelimiters reports whether any layer sets delimiters.
func (c *Config) HasCustomDelimiters() bool {
	return pick(c, func(o *Options) *Delimiters { return o.Delimiters }) != nil
}

// IsUnaryTag reports void elements such as <br>.
func (c *Config) IsUnaryTag(tag string) bool {
	return pickPredicate(c, func(o *Options) func(string) bool { return o.IsUnaryTag })(tag)
}

// IsPreTag reports tags whose whitespace is kept verbatim.
func (c *Config) IsPreTag(tag string) bool {
	return pickPredicate(c, func(o *Options) func(string) bool { return o.IsPreTag })(tag)
}

// IsReservedTag reports platform tags (as opposed to components).
func (c *Config) IsReservedTag(tag string) bool {
	return pickPredicate(c, func(o *Options) func(string) bool { return o.IsReservedTag })(tag)
}

// CanBeLeftOpenTag reports tags whose end tag may be omitted.
func (c *Config) CanBeLeftOpenTag(tag string) bool {
	return pickPredicate(c, func(o *Options) func(string) bool { return o.CanBeLeftOpenTag })(tag)
}

// StaticKeys returns the configured extra static keys plus every module's.
func (c *Config) StaticKeys() []string {
	var keys []string
	if c.override != nil && c.override.StaticKeys != nil {
		keys = append(keys, c.override.StaticKeys...)
	} else if c.base != nil {
		keys = append(keys, c.base.StaticKeys...)
	}
	for _, m := range c.modules {
		keys = append(keys, m.StaticKeys...)
	}
	return keys
}

// PhaseObserver returns the observer for this call, if any.
func (c *Config) PhaseObserver() PhaseObserver {
	if c.override != nil && c.override.OnPhase != nil {
		return c.override.OnPhase
	}
	if c.base != nil {
		return c.base.OnPhase
	}
	return nil
}

// Value resolves an extra key: values set on this Config first, then the
// override, then the base.
func (c *Config) Value(key string) (any, bool) {
	if v, ok := c.local[key]; ok {
		return v, true
	}
	if c.override != nil {
		if v, ok := c.override.Extra[key]; ok {
			return v, true
		}
	}
	if c.base != nil {
		if v, ok := c.base.Extra[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set stores an extra key on this Config only.
func (c *Config) Set(key string, value any) {
	if c.local == nil {
		c.local = make(map[string]any)
	}
	c.local[key] = value
}

// SetReporter installs the warn capability.
func (c *Config) SetReporter(r diag.Reporter) {
	c.reporter = r
}

// Reporter returns the installed warn capability, never nil.
func (c *Config) Reporter() diag.Reporter {
	if c.reporter == nil {
		return diag.NopReporter{}
	}
	return c.reporter
}

// Warn reports a diagnostic through the installed reporter.
func (c *Config) Warn(msg string, rng source.Range, tip bool) {
	c.Reporter().Warn(msg, rng, tip)
}

// Instrument attaches a tracer; phases become children of parent.
func (c *Config) Instrument(t trace.Tracer, parent uint64) {
	c.tracer = t
	c.parentSpan = parent
}

// BeginPhase opens a traced phase and notifies the observer. The returned
// func closes it with the phase outcome.
func (c *Config) BeginPhase(name string) func(err error) {
	span := trace.Begin(c.tracer, trace.ScopeStage, name, c.parentSpan)
	obs := c.PhaseObserver()
	if obs != nil {
		obs(PhaseEvent{Phase: name})
	}
	return func(err error) {
		dur := span.Fail(err).End("")
		if obs != nil {
			obs(PhaseEvent{Phase: name, Done: true, Err: err, Elapsed: dur})
		}
	}
}

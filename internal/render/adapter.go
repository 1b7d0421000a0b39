package render

import (
	"fmt"
	"strings"
	"sync"

	"tmplc/internal/compiler"
	"tmplc/internal/diagfmt"
	"tmplc/internal/options"
)

// WarnHandler receives compile problems found while building functions.
type WarnHandler func(msg string, tip bool)

// AdapterOption configures the adapter returned by NewAdapter.
type AdapterOption func(*adapterConfig)

type adapterConfig struct {
	mode compiler.Mode
	warn WarnHandler
}

// WithMode selects whether compile errors and tips are forwarded to the
// warn handler; production stays silent.
func WithMode(m compiler.Mode) AdapterOption {
	return func(c *adapterConfig) { c.mode = m }
}

// WithWarnHandler installs the handler for compile errors and tips.
func WithWarnHandler(h WarnHandler) AdapterOption {
	return func(c *adapterConfig) { c.warn = h }
}

// NewAdapter returns a compile-to-functions adapter. Every compile function
// it wraps gets its own cache keyed by delimiters and template text.
func NewAdapter(opts ...AdapterOption) compiler.FunctionsAdapter {
	cfg := adapterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.warn == nil {
		cfg.warn = func(string, bool) {}
	}
	return func(compile compiler.CompileFunc) compiler.ToFunctionsFunc {
		c := &cache{entries: make(map[string]*compiler.Functions)}
		return func(template string, override *options.Options) (*compiler.Functions, error) {
			key := cacheKey(template, override)
			if fns, ok := c.get(key); ok {
				return fns, nil
			}
			fns, err := build(cfg, compile, template, override)
			if err != nil {
				return nil, err
			}
			return c.put(key, fns), nil
		}
	}
}

func cacheKey(template string, override *options.Options) string {
	if override != nil && override.Delimiters != nil {
		return override.Delimiters.String() + template
	}
	return template
}

type cache struct {
	mu      sync.Mutex
	entries map[string]*compiler.Functions
}

func (c *cache) get(key string) (*compiler.Functions, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fns, ok := c.entries[key]
	return fns, ok
}

// put stores fns unless another caller got there first, and returns the
// stored value.
func (c *cache) put(key string, fns *compiler.Functions) *compiler.Functions {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[key]; ok {
		return prev
	}
	c.entries[key] = fns
	return fns
}

func build(cfg adapterConfig, compile compiler.CompileFunc, template string, override *options.Options) (*compiler.Functions, error) {
	res, err := compile(template, override)
	if err != nil {
		return nil, err
	}
	if cfg.mode == compiler.ModeDevelopment {
		reportCompiled(cfg.warn, template, res)
	}

	render, statics, err := Load(res.Render, res.StaticRenderFns)
	if err != nil {
		if cfg.mode == compiler.ModeDevelopment && len(res.Errors) == 0 {
			cfg.warn(fmt.Sprintf("Failed to generate render function:\n\n%v in\n\n%s\n", err, res.Render), false)
		}
		return nil, fmt.Errorf("load render code: %w", err)
	}
	return &compiler.Functions{Render: render, StaticRenderFns: statics}, nil
}

func reportCompiled(warn WarnHandler, template string, res *compiler.Result) {
	ranged := false
	for _, e := range res.Errors {
		if e.HasRange() {
			ranged = true
			break
		}
	}
	if len(res.Errors) > 0 {
		if ranged {
			for _, e := range res.Errors {
				warn("Error compiling template:\n\n"+e.Message+"\n\n"+diagfmt.Frame(template, e.Range, false), false)
			}
		} else {
			var b strings.Builder
			b.WriteString("Error compiling template:\n\n")
			b.WriteString(template)
			b.WriteString("\n\n")
			for _, e := range res.Errors {
				b.WriteString("- ")
				b.WriteString(e.Message)
				b.WriteByte('\n')
			}
			warn(b.String(), false)
		}
	}
	for _, tip := range res.Tips {
		warn(tip.Message, true)
	}
}

// Package web assembles the default HTML compiler: element predicates,
// class and style modules, v-text / v-html directives, the default stages,
// the detector and the render adapter.
package web

import (
	"tmplc/internal/ast"
	"tmplc/internal/codegen"
	"tmplc/internal/compiler"
	"tmplc/internal/detector"
	"tmplc/internal/optimizer"
	"tmplc/internal/options"
	"tmplc/internal/parser"
	"tmplc/internal/render"
)

// BaseOptions returns a fresh base configuration. Callers own the result.
func BaseOptions() *options.Options {
	return &options.Options{
		Modules:          []*options.Module{ClassModule(), StyleModule()},
		Directives:       Directives(),
		IsUnaryTag:       IsUnaryTag,
		IsPreTag:         IsPreTag,
		IsReservedTag:    IsReservedTag,
		CanBeLeftOpenTag: CanBeLeftOpenTag,
	}
}

// Stages returns the default parse, optimize and generate stages.
func Stages() compiler.Stages {
	return compiler.Stages{
		Parse:    parser.Parse,
		Optimize: optimizer.Optimize,
		Generate: func(root *ast.Node, cfg *options.Config) (codegen.Code, error) {
			return codegen.Generate(root, cfg)
		},
	}
}

// NewCreator returns a creator over Stages with the detector and the render
// adapter installed. opts are applied after the defaults.
func NewCreator(mode compiler.Mode, opts ...compiler.CreatorOption) *compiler.Creator {
	return compiler.NewCreator(Stages().BaseCompile(), Defaults(mode, opts...)...)
}

// Defaults returns the creator options every flavour starts from.
func Defaults(mode compiler.Mode, opts ...compiler.CreatorOption) []compiler.CreatorOption {
	out := []compiler.CreatorOption{
		compiler.WithMode(mode),
		compiler.WithDetector(detector.Detect),
		compiler.WithFunctions(render.NewAdapter(render.WithMode(mode))),
	}
	return append(out, opts...)
}

// NewCompiler returns a compiler over BaseOptions.
func NewCompiler(mode compiler.Mode, opts ...compiler.CreatorOption) *compiler.Compiler {
	return NewCreator(mode, opts...).New(BaseOptions())
}

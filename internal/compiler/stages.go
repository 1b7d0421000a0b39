package compiler

import (
	"fmt"

	"tmplc/internal/ast"
	"tmplc/internal/codegen"
	"tmplc/internal/diag"
	"tmplc/internal/options"
)

// Result is the output of one compile call. Errors and Tips are filled by
// Compiler.Compile; a bare BaseCompileFunc leaves them nil.
type Result struct {
	AST             *ast.Node
	Render          string
	StaticRenderFns []string
	Errors          []diag.Diagnostic
	Tips            []diag.Diagnostic
}

// BaseCompileFunc runs the pipeline on trimmed template text.
type BaseCompileFunc func(template string, cfg *options.Config) (*Result, error)

// ParseFunc turns template text into an AST. A nil root is valid.
type ParseFunc func(template string, cfg *options.Config) (*ast.Node, error)

// OptimizeFunc annotates the AST in place.
type OptimizeFunc func(root *ast.Node, cfg *options.Config)

// GenerateFunc emits render code for the AST.
type GenerateFunc func(root *ast.Node, cfg *options.Config) (codegen.Code, error)

// Stages is the parse/optimize/generate bundle a compiler flavour closes over.
type Stages struct {
	Parse    ParseFunc
	Optimize OptimizeFunc // nil means no optimize stage
	Generate GenerateFunc
}

// BaseCompile binds the stages into a BaseCompileFunc. Optimize is skipped
// when the effective configuration disables it.
func (s Stages) BaseCompile() BaseCompileFunc {
	return func(template string, cfg *options.Config) (*Result, error) {
		end := cfg.BeginPhase("parse")
		root, err := s.Parse(template, cfg)
		end(err)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}

		if s.Optimize != nil && cfg.Optimize() {
			end = cfg.BeginPhase("optimize")
			s.Optimize(root, cfg)
			end(nil)
		}

		end = cfg.BeginPhase("generate")
		code, err := s.Generate(root, cfg)
		end(err)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}

		return &Result{
			AST:             root,
			Render:          code.Render,
			StaticRenderFns: code.StaticRenderFns,
		}, nil
	}
}

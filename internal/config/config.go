// Package config loads tmplc.toml project files into compiler options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tmplc/internal/compiler"
	"tmplc/internal/options"
)

// FileName is the project file looked up from the working directory upward.
const FileName = "tmplc.toml"

// Flavour names a compiler assembly.
type Flavour string

const (
	FlavourWeb Flavour = "web"
	FlavourSSR Flavour = "ssr"
)

var (
	// ErrInvalidDelimiters reports an empty open or close delimiter.
	ErrInvalidDelimiters = errors.New("[compiler.delimiters] needs non-empty open and close")
)

// Project is a decoded tmplc.toml. Options only carries keys that were
// present in the file so it can be used directly as a compile override.
type Project struct {
	Path       string
	Root       string
	Mode       compiler.Mode
	Flavour    Flavour
	Options    *options.Options
	Jobs       int
	Cache      bool
	CacheDir   string
	Extensions []string
}

type fileConfig struct {
	Compiler compilerSection `toml:"compiler"`
	Build    buildSection    `toml:"build"`
}

type compilerSection struct {
	Mode               string             `toml:"mode"`
	Flavour            string             `toml:"flavour"`
	Optimize           bool               `toml:"optimize"`
	PreserveWhitespace bool               `toml:"preserve_whitespace"`
	Whitespace         string             `toml:"whitespace"`
	Comments           bool               `toml:"comments"`
	OutputSourceRange  bool               `toml:"output_source_range"`
	StaticKeys         []string           `toml:"static_keys"`
	Delimiters         options.Delimiters `toml:"delimiters"`
}

type buildSection struct {
	Jobs       int      `toml:"jobs"`
	Cache      bool     `toml:"cache"`
	CacheDir   string   `toml:"cache_dir"`
	Extensions []string `toml:"extensions"`
}

// Default returns the configuration used when no project file exists.
func Default() *Project {
	return &Project{
		Mode:    compiler.ModeDevelopment,
		Flavour: FlavourWeb,
		Options: &options.Options{},
	}
}

// Find walks up from startDir to locate tmplc.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest tmplc.toml above startDir, or Default when
// there is none.
func Discover(startDir string) (*Project, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes the project file at path.
func Load(path string) (*Project, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	p := Default()
	p.Path = path
	p.Root = filepath.Dir(path)

	c := cfg.Compiler
	if meta.IsDefined("compiler", "mode") {
		mode, ok := compiler.ParseMode(c.Mode)
		if !ok {
			return nil, fmt.Errorf("%s: invalid [compiler].mode %q (expected development|production)", path, c.Mode)
		}
		p.Mode = mode
	}
	if meta.IsDefined("compiler", "flavour") {
		switch f := Flavour(strings.ToLower(strings.TrimSpace(c.Flavour))); f {
		case FlavourWeb, FlavourSSR:
			p.Flavour = f
		default:
			return nil, fmt.Errorf("%s: invalid [compiler].flavour %q (expected web|ssr)", path, c.Flavour)
		}
	}

	o := p.Options
	if meta.IsDefined("compiler", "optimize") {
		o.Optimize = options.Bool(c.Optimize)
	}
	if meta.IsDefined("compiler", "preserve_whitespace") {
		o.PreserveWhitespace = options.Bool(c.PreserveWhitespace)
	}
	if meta.IsDefined("compiler", "comments") {
		o.Comments = options.Bool(c.Comments)
	}
	if meta.IsDefined("compiler", "output_source_range") {
		o.OutputSourceRange = options.Bool(c.OutputSourceRange)
	}
	if meta.IsDefined("compiler", "whitespace") {
		switch ws := options.WhitespaceMode(strings.TrimSpace(c.Whitespace)); ws {
		case options.WhitespacePreserve, options.WhitespaceCondense:
			o.Whitespace = ws
		default:
			return nil, fmt.Errorf("%s: invalid [compiler].whitespace %q (expected preserve|condense)", path, c.Whitespace)
		}
	}
	if meta.IsDefined("compiler", "static_keys") {
		o.StaticKeys = append([]string{}, c.StaticKeys...)
	}
	if meta.IsDefined("compiler", "delimiters") {
		d := c.Delimiters
		if d.Open == "" || d.Close == "" {
			return nil, fmt.Errorf("%s: %w", path, ErrInvalidDelimiters)
		}
		o.Delimiters = &d
	}

	b := cfg.Build
	if meta.IsDefined("build", "jobs") {
		if b.Jobs < 0 {
			return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
		}
		p.Jobs = b.Jobs
	}
	p.Cache = b.Cache
	if dir := strings.TrimSpace(b.CacheDir); dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.Root, filepath.FromSlash(dir))
		}
		p.CacheDir = dir
	}
	for _, ext := range b.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.Extensions = append(p.Extensions, ext)
	}
	return p, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tmplc/internal/buildpipeline"
	"tmplc/internal/cache"
	"tmplc/internal/config"
	"tmplc/internal/diag"
	"tmplc/internal/diagfmt"
	"tmplc/internal/observ"
	"tmplc/internal/trace"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <file|directory>...",
	Short: "Compile templates and report diagnostics",
	Long:  `Compile template files (or every template under the given directories) in parallel, print diagnostics and optionally the generated render code`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompile,
}

func init() {
	addCompilerFlags(compileCmd)
	compileCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	compileCmd.Flags().String("emit", "none", "extra output per file (none|render|ast)")
	compileCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	compileCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	compileCmd.Flags().Bool("cache", false, "use the persistent disk cache")
	compileCmd.Flags().String("cache-dir", "", "disk cache directory (default: user cache dir)")
	compileCmd.Flags().Bool("clear-cache", false, "drop the disk cache before compiling")
	compileCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type compileFlags struct {
	format     string
	emit       string
	pathMode   diagfmt.PathMode
	jobs       int
	useCache   bool
	cacheDir   string
	clearCache bool
	ui         uiMode
	quiet      bool
	timings    bool
}

func readCompileFlags(cmd *cobra.Command, p *config.Project) (compileFlags, error) {
	var f compileFlags
	var err error
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "json", "short":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.emit, err = cmd.Flags().GetString("emit"); err != nil {
		return f, fmt.Errorf("failed to get emit flag: %w", err)
	}
	switch f.emit {
	case "none", "render", "ast":
	default:
		return f, fmt.Errorf("unknown emit value: %s", f.emit)
	}
	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if f.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return f, fmt.Errorf("unknown path mode: %s", pathMode)
	}

	f.jobs = p.Jobs
	if cmd.Flags().Changed("jobs") {
		if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return f, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	f.useCache, f.cacheDir = p.Cache, p.CacheDir
	if cmd.Flags().Changed("cache") {
		if f.useCache, err = cmd.Flags().GetBool("cache"); err != nil {
			return f, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	if cmd.Flags().Changed("cache-dir") {
		if f.cacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
			return f, fmt.Errorf("failed to get cache-dir flag: %w", err)
		}
		f.useCache = true
	}
	if f.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	// кэш не хранит AST
	if f.emit == "ast" {
		f.useCache = false
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return f, nil
}

// runCompile executes "compile": it loads the project file, collects the
// templates, compiles them in parallel and prints the results. Files with
// error diagnostics make the command fail after everything was printed.
func runCompile(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := applyCompilerFlags(cmd, p); err != nil {
		return err
	}
	flags, err := readCompileFlags(cmd, p)
	if err != nil {
		return err
	}

	exts := p.Extensions
	if len(exts) == 0 {
		exts = buildpipeline.DefaultExtensions
	}
	files, err := buildpipeline.CollectFiles(args, exts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	tracer := trace.FromContext(cmd.Context())
	span := trace.Begin(tracer, trace.ScopeBatch, "compile", 0)
	defer span.End(fmt.Sprintf("%d files", len(files)))

	c := newCompiler(p, tracer, nil)
	timer := observ.NewTimer()
	req := &buildpipeline.Request{
		Files:    files,
		BaseDir:  baseDir,
		Compile:  c.Compile,
		Override: p.Options,
		Jobs:     flags.jobs,
		Timer:    timer,
	}
	if flags.useCache {
		dc, err := openCache(flags.cacheDir)
		if err != nil {
			return err
		}
		if flags.clearCache {
			if err := dc.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		req.Cache = dc
		req.Fingerprint = buildpipeline.Fingerprint(p.Options, fingerprintParts(p)...)
	}

	var result buildpipeline.Result
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = buildpipeline.DisplayName(file, baseDir)
	}
	if flags.format == "pretty" && !flags.quiet && shouldUseTUI(flags.ui) {
		result, err = runCompileWithUI(cmd.Context(), "compiling templates", names, req)
	} else {
		result, err = buildpipeline.Compile(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch flags.format {
	case "json":
		err = writeCompileJSON(out, result, flags, baseDir)
	case "short":
		err = writeCompileShort(out, result, flags)
	default:
		err = writeCompilePretty(out, result, flags, baseDir)
	}
	if err != nil {
		return err
	}

	if flags.timings {
		printStageTimings(cmd.ErrOrStderr(), result.Timings)
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	failed := result.Failed()
	if !flags.quiet && flags.format != "json" {
		printCompileSummary(cmd.ErrOrStderr(), result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed: %w", failed, len(result.Files), errReported)
	}
	return nil
}

func openCache(dir string) (*cache.DiskCache, error) {
	var (
		dc  *cache.DiskCache
		err error
	)
	if dir != "" {
		dc, err = cache.Open(dir)
	} else {
		dc, err = cache.OpenDefault("tmplc")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return dc, nil
}

func diagnostics(res *buildpipeline.FileResult) []diag.Diagnostic {
	if res.Result == nil {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(res.Result.Errors)+len(res.Result.Tips))
	out = append(out, res.Result.Errors...)
	return append(out, res.Result.Tips...)
}

func writeCompilePretty(out io.Writer, result buildpipeline.Result, flags compileFlags, baseDir string) error {
	opts := diagfmt.PrettyOpts{
		Color:    useColor(),
		PathMode: flags.pathMode,
		BaseDir:  baseDir,
	}
	for i := range result.Files {
		f := &result.Files[i]
		if f.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", diagfmt.FormatPath(f.Path, flags.pathMode, baseDir), f.Err)
			continue
		}
		if diags := diagnostics(f); len(diags) > 0 {
			if err := diagfmt.Pretty(out, f.Path, f.Template, diags, opts); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		if err := writeEmit(out, f, flags, baseDir); err != nil {
			return err
		}
	}
	return nil
}

func writeCompileShort(out io.Writer, result buildpipeline.Result, flags compileFlags) error {
	for i := range result.Files {
		f := &result.Files[i]
		if f.Err != nil {
			fmt.Fprintf(out, "error %s %v\n", f.Name, f.Err)
			continue
		}
		if diags := diagnostics(f); len(diags) > 0 {
			fmt.Fprintln(out, diag.FormatShort(f.Name, f.Template, diags))
		}
		if err := writeEmit(out, f, flags, ""); err != nil {
			return err
		}
	}
	return nil
}

func writeEmit(out io.Writer, f *buildpipeline.FileResult, flags compileFlags, baseDir string) error {
	if f.Result == nil {
		return nil
	}
	switch flags.emit {
	case "render":
		fmt.Fprintf(out, "// %s\n", diagfmt.FormatPath(f.Path, flags.pathMode, baseDir))
		fmt.Fprintln(out, f.Result.Render)
		for i, fn := range f.Result.StaticRenderFns {
			fmt.Fprintf(out, "// static %d\n%s\n", i, fn)
		}
	case "ast":
		fmt.Fprintf(out, "// %s\n", diagfmt.FormatPath(f.Path, flags.pathMode, baseDir))
		return diagfmt.FormatASTPretty(out, f.Result.AST)
	}
	return nil
}

type compileFileJSON struct {
	File            string                    `json:"file"`
	Cached          bool                      `json:"cached,omitempty"`
	Error           string                    `json:"error,omitempty"`
	Diagnostics     diagfmt.DiagnosticsOutput `json:"diagnostics"`
	Render          string                    `json:"render,omitempty"`
	StaticRenderFns []string                  `json:"static_render_fns,omitempty"`
	AST             *diagfmt.ASTNodeOutput    `json:"ast,omitempty"`
}

type compileJSON struct {
	Files  []compileFileJSON `json:"files"`
	Failed int               `json:"failed"`
}

func writeCompileJSON(out io.Writer, result buildpipeline.Result, flags compileFlags, baseDir string) error {
	opts := diagfmt.JSONOpts{IncludePositions: true, PathMode: flags.pathMode, BaseDir: baseDir}
	payload := compileJSON{Files: make([]compileFileJSON, 0, len(result.Files)), Failed: result.Failed()}
	for i := range result.Files {
		f := &result.Files[i]
		entry := compileFileJSON{
			File:        diagfmt.FormatPath(f.Path, flags.pathMode, baseDir),
			Cached:      f.Cached,
			Diagnostics: diagfmt.BuildDiagnosticsOutput(f.Path, f.Template, diagnostics(f), opts),
		}
		if f.Err != nil {
			entry.Error = f.Err.Error()
		}
		if f.Result != nil {
			switch flags.emit {
			case "render":
				entry.Render = f.Result.Render
				entry.StaticRenderFns = f.Result.StaticRenderFns
			case "ast":
				if f.Result.AST != nil {
					node := diagfmt.NodeJSON(f.Result.AST)
					entry.AST = &node
				}
			}
		}
		payload.Files = append(payload.Files, entry)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printCompileSummary(out io.Writer, result buildpipeline.Result) {
	cached := 0
	for _, f := range result.Files {
		if f.Cached {
			cached++
		}
	}
	fmt.Fprintf(out, "compiled %d templates (%d cached, %d failed)\n", len(result.Files), cached, result.Failed())
}

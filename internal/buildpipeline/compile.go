package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tmplc/internal/cache"
	"tmplc/internal/compiler"
	"tmplc/internal/observ"
	"tmplc/internal/options"
	"tmplc/internal/source"
)

// Request configures a batch compile.
type Request struct {
	Files    []string
	BaseDir  string // для коротких имён в событиях
	Compile  compiler.CompileFunc
	Override *options.Options
	Jobs     int

	// Cache and Fingerprint enable the disk cache; a nil Cache disables it.
	Cache       *cache.DiskCache
	Fingerprint string

	Progress ProgressSink
	// Timer, when set, receives every compile phase of every file.
	Timer *observ.Timer
}

// FileResult is the outcome of one file. Err is set for read or compile
// failures; diagnostics stay in Result.
type FileResult struct {
	Path     string
	Name     string
	Template string
	Result   *compiler.Result
	Cached   bool
	Err      error
	Timings  Timings
}

// HasErrors reports a failure or error diagnostics.
func (f FileResult) HasErrors() bool {
	return f.Err != nil || (f.Result != nil && len(f.Result.Errors) > 0)
}

// Result holds per-file results in request order.
type Result struct {
	Files   []FileResult
	Timings Timings
}

// Failed counts files with HasErrors.
func (r Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.HasErrors() {
			n++
		}
	}
	return n
}

// ErrNoCompiler is returned when Request.Compile is nil.
var ErrNoCompiler = errors.New("missing compile function")

// Compile compiles every file in parallel. Per-file failures are recorded
// in the result; only cancellation and a bad request return an error.
func Compile(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Compile == nil {
		return result, ErrNoCompiler
	}
	result.Files = make([]FileResult, len(req.Files))
	if len(req.Files) == 0 {
		return result, nil
	}

	for i, path := range req.Files {
		result.Files[i] = FileResult{Path: path, Name: DisplayName(path, req.BaseDir)}
		emit(req.Progress, Event{File: result.Files[i].Name, Stage: StageRead, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	// индекс i уникален для горутины, мьютекс не нужен
	for i := range req.Files {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			compileFile(req, &result.Files[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		emit(req.Progress, Event{Stage: StageCompile, Status: StatusError, Err: err})
		return result, err
	}

	for _, f := range result.Files {
		result.Timings.Add(StageRead, f.Timings.Duration(StageRead))
		result.Timings.Add(StageCompile, f.Timings.Duration(StageCompile))
	}
	emit(req.Progress, Event{Stage: StageCompile, Status: StatusDone, Elapsed: result.Timings.Sum(StageRead, StageCompile)})
	return result, nil
}

func compileFile(req *Request, f *FileResult) {
	emit(req.Progress, Event{File: f.Name, Stage: StageRead, Status: StatusWorking})
	start := time.Now()
	text, err := source.ReadTemplate(f.Path)
	f.Timings.Add(StageRead, time.Since(start))
	if err != nil {
		f.Err = fmt.Errorf("read %s: %w", f.Path, err)
		emit(req.Progress, Event{File: f.Name, Stage: StageRead, Status: StatusError, Err: f.Err})
		return
	}
	f.Template = text

	emit(req.Progress, Event{File: f.Name, Stage: StageCompile, Status: StatusWorking})
	start = time.Now()
	key := cache.Key(text, req.Fingerprint)
	if entry, ok, cerr := req.Cache.Get(key); cerr == nil && ok {
		f.Result, f.Cached = entry.Result(), true
		f.Timings.Add(StageCompile, time.Since(start))
		emit(req.Progress, Event{File: f.Name, Stage: StageCompile, Status: StatusCached, Elapsed: time.Since(start)})
		return
	}

	res, err := req.Compile(text, withObserver(req.Override, req.Timer))
	elapsed := time.Since(start)
	f.Timings.Add(StageCompile, elapsed)
	if err != nil {
		f.Err = fmt.Errorf("compile %s: %w", f.Path, err)
		emit(req.Progress, Event{File: f.Name, Stage: StageCompile, Status: StatusError, Err: f.Err, Elapsed: elapsed})
		return
	}
	f.Result = res
	if perr := req.Cache.Put(key, cache.FromResult(res)); perr != nil {
		// кеш не обязателен; ошибку видно в событии
		emit(req.Progress, Event{File: f.Name, Stage: StageCompile, Status: StatusWorking, Err: perr})
	}
	status := StatusDone
	if len(res.Errors) > 0 {
		status = StatusError
	}
	emit(req.Progress, Event{File: f.Name, Stage: StageCompile, Status: status, Elapsed: elapsed})
}

// withObserver returns a shallow copy of override whose phase observer also
// feeds timer. override itself is shared between goroutines and never written.
func withObserver(override *options.Options, timer *observ.Timer) *options.Options {
	if timer == nil {
		return override
	}
	var o options.Options
	if override != nil {
		o = *override
	}
	prev := o.OnPhase
	record := timer.Observer()
	o.OnPhase = func(ev options.PhaseEvent) {
		record(ev)
		if prev != nil {
			prev(ev)
		}
	}
	return &o
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// Fingerprint identifies everything besides the template text that changes
// compile output. Modules and directives contribute their names only, so a
// caller changing their behaviour under the same name must add a part
// (flavour, mode, version).
func Fingerprint(o *options.Options, parts ...string) string {
	fields := append([]string{}, parts...)
	if o != nil {
		if o.Delimiters != nil {
			fields = append(fields, "delims="+o.Delimiters.String())
		}
		fields = appendBool(fields, "optimize", o.Optimize)
		fields = appendBool(fields, "preserve", o.PreserveWhitespace)
		fields = appendBool(fields, "comments", o.Comments)
		fields = appendBool(fields, "ranges", o.OutputSourceRange)
		if o.Whitespace != "" {
			fields = append(fields, "ws="+string(o.Whitespace))
		}
		if len(o.StaticKeys) > 0 {
			keys := append([]string{}, o.StaticKeys...)
			sort.Strings(keys)
			fields = append(fields, "static="+strings.Join(keys, ","))
		}
		if len(o.Modules) > 0 {
			names := make([]string, 0, len(o.Modules))
			for _, m := range o.Modules {
				if m != nil {
					names = append(names, m.Name)
				}
			}
			fields = append(fields, "modules="+strings.Join(names, ","))
		}
		if len(o.Directives) > 0 {
			fields = append(fields, "directives="+strings.Join(sortedKeys(o.Directives), ","))
		}
		if len(o.Extra) > 0 {
			extra := make([]string, 0, len(o.Extra))
			for _, k := range sortedKeys(o.Extra) {
				extra = append(extra, k+":"+extraValue(o.Extra[k]))
			}
			fields = append(fields, "extra="+strings.Join(extra, ","))
		}
	}
	return strings.Join(fields, ";")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extraValue prints scalars by value; anything else only by type, since
// pointers and funcs differ between runs.
func extraValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool, int, int64, uint32, float64:
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%T", v)
}

func appendBool(fields []string, name string, v *bool) []string {
	if v == nil {
		return fields
	}
	return append(fields, name+"="+strconv.FormatBool(*v))
}

package diagfmt

import (
	"encoding/json"
	"io"

	"tmplc/internal/diag"
	"tmplc/internal/source"
)

// LocationJSON представляет местоположение в шаблоне для JSON
type LocationJSON struct {
	File      string  `json:"file"`
	StartByte *uint32 `json:"start_byte,omitempty"`
	EndByte   *uint32 `json:"end_byte,omitempty"`
	StartLine uint32  `json:"start_line,omitempty"`
	StartCol  uint32  `json:"start_col,omitempty"`
	EndLine   uint32  `json:"end_line,omitempty"`
	EndCol    uint32  `json:"end_col,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(file, text string, rng source.Range, includePositions bool) LocationJSON {
	loc := LocationJSON{File: file}
	if rng.HasStart {
		start := rng.Start
		loc.StartByte = &start
		if includePositions {
			pos := source.Resolve(text, start)
			loc.StartLine, loc.StartCol = pos.Line, pos.Col
		}
	}
	if rng.HasEnd {
		end := rng.End
		loc.EndByte = &end
		if includePositions {
			pos := source.Resolve(text, end)
			loc.EndLine, loc.EndCol = pos.Line, pos.Col
		}
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(path, text string, diags []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	file := FormatPath(path, opts.PathMode, opts.BaseDir)
	out := make([]DiagnosticJSON, 0, n)
	for _, d := range diags[:n] {
		out = append(out, DiagnosticJSON{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Location: makeLocation(file, text, d.Range, opts.IncludePositions),
		})
	}
	return DiagnosticsOutput{Diagnostics: out, Count: len(out)}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, path, text string, diags []diag.Diagnostic, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(path, text, diags, opts))
}

package diag

import "tmplc/internal/source"

// Reporter is the warn capability handed to every stage. Ranges are raw
// offsets into the text the stage saw; tip selects the tips sequence.
type Reporter interface {
	Warn(msg string, rng source.Range, tip bool)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(msg string, rng source.Range, tip bool)

// Warn calls f.
func (f ReporterFunc) Warn(msg string, rng source.Range, tip bool) {
	if f != nil {
		f(msg, rng, tip)
	}
}

// NopReporter drops everything.
type NopReporter struct{}

// Warn does nothing.
func (NopReporter) Warn(string, source.Range, bool) {}

// ReportError is a shortcut for Warn(msg, rng, false) that tolerates nil.
func ReportError(r Reporter, rng source.Range, msg string) {
	if r != nil {
		r.Warn(msg, rng, false)
	}
}

// ReportTip is a shortcut for Warn(msg, rng, true) that tolerates nil.
func ReportTip(r Reporter, rng source.Range, msg string) {
	if r != nil {
		r.Warn(msg, rng, true)
	}
}

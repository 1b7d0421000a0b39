package diag

import "tmplc/internal/source"

// Mode selects how a Collector records ranges.
type Mode uint8

const (
	// ModePlain keeps messages only.
	ModePlain Mode = iota
	// ModeRange keeps ranges corrected by the trimmed leading whitespace.
	ModeRange
)

func (m Mode) String() string {
	if m == ModeRange {
		return "range"
	}
	return "plain"
}

// Collector owns the errors and tips of a single compile call.
// It is not safe for concurrent use; each call builds its own.
type Collector struct {
	mode    Mode
	leading uint32
	errors  []Diagnostic
	tips    []Diagnostic
}

// NewCollector returns an empty collector. leading is the number of
// whitespace bytes removed from the front of the template; it is only used
// in ModeRange.
func NewCollector(mode Mode, leading uint32) *Collector {
	return &Collector{
		mode:    mode,
		leading: leading,
		errors:  make([]Diagnostic, 0),
		tips:    make([]Diagnostic, 0),
	}
}

// Warn records a diagnostic into errors or tips.
func (c *Collector) Warn(msg string, rng source.Range, tip bool) {
	d := Diagnostic{Severity: SevError, Message: msg}
	if tip {
		d.Severity = SevTip
	}
	if c.mode == ModeRange {
		d.Range = rng.ShiftRight(c.leading)
	}
	if tip {
		c.tips = append(c.tips, d)
		return
	}
	c.errors = append(c.errors, d)
}

// Mode returns the recording mode.
func (c *Collector) Mode() Mode {
	return c.mode
}

// Errors returns a copy of the recorded errors in report order.
func (c *Collector) Errors() []Diagnostic {
	return append([]Diagnostic{}, c.errors...)
}

// Tips returns a copy of the recorded tips in report order.
func (c *Collector) Tips() []Diagnostic {
	return append([]Diagnostic{}, c.tips...)
}

// Len returns the total number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.errors) + len(c.tips)
}

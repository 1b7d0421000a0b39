package trace

import "time"

// Kind is the shape of an event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope orders events from coarse to fine; a level shows every scope up to
// its ceiling.
type Scope uint8

const (
	// ScopeBatch covers CLI commands and whole compile batches.
	ScopeBatch Scope = iota + 1
	// ScopeTemplate covers one Compile call.
	ScopeTemplate
	// ScopeStage covers parse, optimize, generate and detect.
	ScopeStage
	// ScopeDiag covers single diagnostics and loader details.
	ScopeDiag
)

func (s Scope) String() string {
	switch s {
	case ScopeBatch:
		return "batch"
	case ScopeTemplate:
		return "template"
	case ScopeStage:
		return "stage"
	case ScopeDiag:
		return "diag"
	}
	return "unknown"
}

// Attr is an ordered key/value annotation.
type Attr struct {
	Key   string
	Value string
}

// Event is one trace record. Elapsed is set on end events only.
type Event struct {
	Time    time.Time
	Seq     uint64
	Kind    Kind
	Scope   Scope
	Span    uint64
	Parent  uint64
	Name    string
	Detail  string
	Failed  bool
	Elapsed time.Duration
	Attrs   []Attr
}

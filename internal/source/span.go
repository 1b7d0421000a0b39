package source

import (
	"fmt"
	"strings"
	"unicode"

	"fortio.org/safecast"
)

// Range is a pair of byte offsets into template text. Either bound may be
// missing; stages report whatever they know.
type Range struct {
	Start    uint32 // в байтах включительно
	End      uint32 // в байтах не включительно
	HasStart bool
	HasEnd   bool
}

// Span returns a range with both bounds set.
func Span(start, end uint32) Range {
	return Range{Start: start, End: end, HasStart: true, HasEnd: true}
}

// At returns a range with only the start bound set.
func At(start uint32) Range {
	return Range{Start: start, HasStart: true}
}

// Empty reports whether the range carries no position at all.
func (r Range) Empty() bool {
	return !r.HasStart && !r.HasEnd
}

// ShiftRight moves every present bound by n bytes.
func (r Range) ShiftRight(n uint32) Range {
	if r.HasStart {
		r.Start += n
	}
	if r.HasEnd {
		r.End += n
	}
	return r
}

func (r Range) String() string {
	switch {
	case r.HasStart && r.HasEnd:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	case r.HasStart:
		return fmt.Sprintf("%d-", r.Start)
	case r.HasEnd:
		return fmt.Sprintf("-%d", r.End)
	}
	return "-"
}

// Offset converts an int index into a template offset.
func Offset(i int) uint32 {
	off, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return off
}

// LeadingSpace returns the byte length of the whitespace prefix that
// strings.TrimSpace removes from text.
func LeadingSpace(text string) uint32 {
	return Offset(len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace)))
}

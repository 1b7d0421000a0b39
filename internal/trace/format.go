package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format selects the event encoding.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat converts a CLI name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent encodes ev; start is the tracer origin for relative times.
func FormatEvent(ev *Event, format Format, start time.Time) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev, start)
	}
	return formatText(ev, start)
}

type jsonEvent struct {
	Seq       uint64            `json:"seq"`
	OffsetUS  int64             `json:"t_us"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	Span      uint64            `json:"span,omitempty"`
	Parent    uint64            `json:"parent,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	Failed    bool              `json:"failed,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func formatNDJSON(ev *Event, start time.Time) []byte {
	j := jsonEvent{
		Seq:       ev.Seq,
		OffsetUS:  ev.Time.Sub(start).Microseconds(),
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Detail:    ev.Detail,
		Failed:    ev.Failed,
		ElapsedUS: ev.Elapsed.Microseconds(),
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(j)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"kind":"error","detail":%q}`, err.Error()))
	}
	return append(data, '\n')
}

// formatText renders one line:
//
//	[seq] +offset  indent marker scope/name (detail) elapsed k=v ...
func formatText(ev *Event, start time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "[%5d] %+9.3fms ", ev.Seq, millis(ev.Time.Sub(start)))
	b.WriteString(strings.Repeat("  ", max(int(ev.Scope)-1, 0)))
	switch ev.Kind {
	case KindBegin:
		b.WriteString("> ")
	case KindEnd:
		if ev.Failed {
			b.WriteString("! ")
		} else {
			b.WriteString("< ")
		}
	default:
		b.WriteString("* ")
	}
	b.WriteString(ev.Scope.String())
	b.WriteByte('/')
	b.WriteString(ev.Name)
	if ev.Detail != "" {
		b.WriteString(" (" + ev.Detail + ")")
	}
	if ev.Kind == KindEnd {
		fmt.Fprintf(&b, " %.3fms", millis(ev.Elapsed))
	}
	for _, a := range ev.Attrs {
		b.WriteString(" " + a.Key + "=" + a.Value)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

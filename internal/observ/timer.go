// Package observ collects per-phase timings of compile calls.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tmplc/internal/options"
)

// Phase records the duration of one compile phase.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer accumulates phases. Safe for concurrent use, so one Timer can
// observe a whole batch.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	starts map[int]time.Time
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), starts: make(map[int]time.Time)}
}

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name})
	idx := len(t.phases) - 1
	t.starts[idx] = time.Now()
	return idx
}

// End finishes the phase started by Begin.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	start, ok := t.starts[idx]
	if !ok {
		return
	}
	delete(t.starts, idx)
	t.phases[idx].Dur = time.Since(start)
	t.phases[idx].Note = note
}

// Record adds a finished phase.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note})
}

// Observer returns a phase observer that records every finished phase of
// a compile call. Pass it as Options.OnPhase.
func (t *Timer) Observer() options.PhaseObserver {
	return func(ev options.PhaseEvent) {
		if !ev.Done {
			return
		}
		note := ""
		if ev.Err != nil {
			note = ev.Err.Error()
		}
		t.Record(ev.Phase, ev.Elapsed, note)
	}
}

// PhaseReport is one row of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates phases by name in first-seen order.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report summarises recorded phases. Phases with the same name are summed;
// the last non-empty note wins.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	var report Report
	index := make(map[string]int)
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		i, ok := index[p.Name]
		if !ok {
			i = len(report.Phases)
			index[p.Name] = i
			report.Phases = append(report.Phases, PhaseReport{Name: p.Name})
		}
		row := &report.Phases[i]
		row.Count++
		row.DurationMS += durationToMillis(p.Dur)
		if p.Note != "" {
			row.Note = p.Note
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %4dx %9.2f ms", p.Name, p.Count, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s       %9.2f ms\n", "total", report.TotalMS)
	return b.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Package observ measures the phases of a CLI command for --timings output.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step of processing a single input.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in the order they start. A nil *Timer is valid and
// records nothing, so callers need no branches when timings are off.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4), now: time.Now} }

// Track starts the named phase and returns the function that ends it.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return func(note string) {
		p := &t.phases[idx]
		if p.Dur != 0 {
			return
		}
		p.Dur = t.now().Sub(p.Start)
		p.Note = note
	}
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary renders r as an indented table, one phase per line.
func (r Report) Summary(title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "timings %s:\n", title)
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-8s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-8s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

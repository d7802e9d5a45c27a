package scan

import (
	"fmt"
	"strings"
	"time"
)

// Benchmark collects NamedTimers for a scan run so the CLI's --benchmark
// output can report how long each phase took.
type Benchmark struct {
	timers []*NamedTimer
}

// Init returns an empty Benchmark.
func Init() *Benchmark {
	return &Benchmark{}
}

// Push adds timer to the benchmark.
func (b *Benchmark) Push(timer *NamedTimer) {
	b.timers = append(b.timers, timer)
}

// Summary renders every completed timer as one line, skipping any timer
// that was never ended.
func (b *Benchmark) Summary() string {
	var sb strings.Builder
	sb.WriteString("\nfarscan benchmark summary")
	for _, t := range b.timers {
		if t.start.IsZero() || t.end.IsZero() {
			continue
		}
		fmt.Fprintf(&sb, "\n%-10s | %vs", t.name, t.end.Sub(t.start).Seconds())
	}
	return sb.String()
}

// NamedTimer records the start and end time of one named phase.
type NamedTimer struct {
	name  string
	start time.Time
	end   time.Time
}

// StartTimer begins a new named timer.
func StartTimer(name string) *NamedTimer {
	return &NamedTimer{name: name, start: time.Now()}
}

// End stops the timer.
func (t *NamedTimer) End() {
	t.end = time.Now()
}

// Package metrics accumulates per-frame scalar summaries of driver views.
package metrics

import (
	"sort"

	"github.com/san-kum/simlab/internal/sim"
)

type Metric interface {
	Name() string
	Observe(v sim.View)
	Value() float64
	Reset()
}

// Set fans frames out to its metrics; it implements sim.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

func (s *Set) OnFrame(_ int, views []sim.View) {
	for _, v := range views {
		for _, m := range s.metrics {
			m.Observe(v)
		}
	}
}

// Report returns every metric value keyed by name.
func (s *Set) Report() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.metrics))
	for _, m := range s.metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

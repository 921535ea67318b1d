package metrics

import (
	"math"

	"github.com/san-kum/simlab/internal/sim"
)

// Peak records the largest absolute current value of one channel across all
// views that expose it.
type Peak struct {
	name    string
	channel string
	peak    float64
	samples int
}

func NewPeak(channel string) *Peak {
	return &Peak{
		name:    "peak_" + channel,
		channel: channel,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(v sim.View) {
	cur := v.Current()
	for i, ch := range v.Channels() {
		if ch == p.channel && i < len(cur) {
			p.peak = math.Max(p.peak, math.Abs(cur[i]))
			p.samples++
			return
		}
	}
}

func (p *Peak) Value() float64 {
	return p.peak
}

func (p *Peak) Reset() {
	p.peak = 0
	p.samples = 0
}

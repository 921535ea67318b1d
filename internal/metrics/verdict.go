package metrics

import "github.com/san-kum/simlab/internal/sim"

// PassRate is the fraction of decided entities whose verdict is "pass".
// Each entity is counted once, on the first frame it is seen decided. Entities
// are told apart by identity, so duplicate labels still count separately.
type PassRate struct {
	name    string
	decided map[sim.View]bool
	passed  int
}

func NewPassRate() *PassRate {
	return &PassRate{
		name:    "pass_rate",
		decided: make(map[sim.View]bool),
	}
}

func (p *PassRate) Name() string { return p.name }

func (p *PassRate) Observe(v sim.View) {
	vd, ok := v.(sim.Verdict)
	if !ok {
		return
	}
	if _, done := p.decided[v]; done {
		return
	}
	name, decided := vd.Verdict()
	if !decided {
		return
	}
	pass := name == "pass"
	p.decided[v] = pass
	if pass {
		p.passed++
	}
}

func (p *PassRate) Value() float64 {
	if len(p.decided) == 0 {
		return 0
	}
	return float64(p.passed) / float64(len(p.decided))
}

func (p *PassRate) Decided() int { return len(p.decided) }

func (p *PassRate) Reset() {
	p.decided = make(map[sim.View]bool)
	p.passed = 0
}

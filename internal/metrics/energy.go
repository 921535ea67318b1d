package metrics

import (
	"math"

	"github.com/san-kum/simlab/internal/sim"
)

type energetic interface {
	Energy() float64
}

type energyRecorder interface {
	EnergyHistory() []float64
}

// EnergyDrift tracks the largest relative departure of each entity's energy
// from its starting value. The baseline is the construction sample when the
// view records an energy history, else the first observed frame. Views
// without an Energy method are ignored.
type EnergyDrift struct {
	name     string
	initial  map[sim.View]float64
	maxDrift float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		initial: make(map[sim.View]float64),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(v sim.View) {
	ec, ok := v.(energetic)
	if !ok {
		return
	}
	energy := ec.Energy()

	e0, seen := e.initial[v]
	if !seen {
		e0 = energy
		if h, ok := v.(energyRecorder); ok {
			if hist := h.EnergyHistory(); len(hist) > 0 {
				e0 = hist[0]
			}
		}
		e.initial[v] = e0
	}
	if e0 != 0 {
		drift := math.Abs(energy-e0) / math.Abs(e0)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = make(map[sim.View]float64)
	e.maxDrift = 0
}

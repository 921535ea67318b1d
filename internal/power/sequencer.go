package power

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/simlab/internal/sim"
)

const KindSequencer = "adc"

// History channel names exposed through sim.View.
const (
	ChanSupply    = "supply"
	ChanRegulated = "regulated"
	ChanEnable    = "enable"
)

// Config holds the immutable parameters of one device. Voltages in V, times
// in s, steepness in V/s, ripple frequency in rad/s.
type Config struct {
	Label string `yaml:"label"`

	SupplySteepness float64 `yaml:"supply_steepness"`
	RippleAmplitude float64 `yaml:"ripple_amplitude"`
	RippleFrequency float64 `yaml:"ripple_frequency"`
	RipplePhase     float64 `yaml:"ripple_phase"`
	SupplyMax       float64 `yaml:"supply_max"`

	RegulatorDelay     float64 `yaml:"regulator_delay"`
	RegulatorSteepness float64 `yaml:"regulator_steepness"`
	RegulatorMax       float64 `yaml:"regulator_max"`
	DropoutMargin      float64 `yaml:"dropout_margin"`

	EnableDelay float64 `yaml:"enable_delay"`
	EnableHigh  float64 `yaml:"enable_high"`
	CheckDelay  float64 `yaml:"check_delay"`
	Threshold   float64 `yaml:"threshold"`

	Horizon float64 `yaml:"horizon"`
}

func DefaultConfig() Config {
	return Config{
		Label:              "device",
		SupplySteepness:    9.0,
		RippleAmplitude:    5.0,
		RippleFrequency:    3.0,
		RipplePhase:        0,
		SupplyMax:          12.0,
		RegulatorDelay:     0.5,
		RegulatorSteepness: 100.0,
		RegulatorMax:       5.0,
		DropoutMargin:      0.5,
		EnableDelay:        0.6,
		EnableHigh:         3.3,
		CheckDelay:         0.1,
		Threshold:          2.45,
		Horizon:            1.5,
	}
}

func (c Config) Validate() error {
	checks := []error{
		sim.NonNegative("supply_steepness", c.SupplySteepness),
		sim.NonNegative("ripple_amplitude", c.RippleAmplitude),
		sim.Finite("ripple_frequency", c.RippleFrequency),
		sim.Finite("ripple_phase", c.RipplePhase),
		sim.Positive("supply_max", c.SupplyMax),
		sim.NonNegative("regulator_delay", c.RegulatorDelay),
		sim.NonNegative("regulator_steepness", c.RegulatorSteepness),
		sim.Positive("regulator_max", c.RegulatorMax),
		sim.NonNegative("dropout_margin", c.DropoutMargin),
		sim.NonNegative("enable_delay", c.EnableDelay),
		sim.Finite("enable_high", c.EnableHigh),
		sim.NonNegative("check_delay", c.CheckDelay),
		sim.Finite("threshold", c.Threshold),
		sim.Positive("horizon", c.Horizon),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Sequencer is the simulated device. Its state only changes through Step.
type Sequencer struct {
	cfg Config

	supply    float64
	regulated float64
	enable    float64
	decision  latch
	decidedAt float64
	elapsed   float64

	histT   []float64
	histV   []float64
	histReg []float64
	histEn  []float64
}

func NewSequencer(cfg Config) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("device %q: %w", cfg.Label, err)
	}
	s := &Sequencer{cfg: cfg, decidedAt: math.NaN()}
	s.record(0)
	return s, nil
}

// Step applies, in order, the supply, regulator, enable and decision rules.
func (s *Sequencer) Step(dt float64) {
	sim.MustStep(dt)

	t := s.elapsed
	if s.Done() {
		return
	}

	c := s.cfg

	s.supply += c.SupplySteepness*dt + c.RippleAmplitude*math.Sin(t*c.RippleFrequency+c.RipplePhase)*dt
	s.supply = clamp(s.supply, 0, c.SupplyMax)

	if t >= c.RegulatorDelay {
		s.regulated += c.RegulatorSteepness * dt
	}
	s.regulated = math.Min(s.regulated, c.RegulatorMax)
	s.regulated = math.Max(s.regulated, 0)
	// Dropout tracks the possibly lower supply, so it is applied last and
	// wins over the floor when the supply has no headroom.
	s.regulated = math.Min(s.regulated, s.supply-c.DropoutMargin)

	if t >= c.EnableDelay {
		s.enable = c.EnableHigh
	}

	if t >= c.EnableDelay+c.CheckDelay && s.decision.get() == Undecided {
		verdict := Fail
		if s.regulated > c.Threshold {
			verdict = Pass
		}
		if s.decision.set(verdict) {
			s.decidedAt = t
		}
	}

	s.elapsed = t + dt
	s.record(s.elapsed)
}

func (s *Sequencer) record(t float64) {
	s.histT = append(s.histT, t)
	s.histV = append(s.histV, s.supply)
	s.histReg = append(s.histReg, s.regulated)
	s.histEn = append(s.histEn, s.enable)
}

// Done reports whether the horizon has been passed and Step is frozen.
func (s *Sequencer) Done() bool { return s.elapsed > s.cfg.Horizon }

func (s *Sequencer) Config() Config            { return s.cfg }
func (s *Sequencer) SupplyVoltage() float64    { return s.supply }
func (s *Sequencer) RegulatedVoltage() float64 { return s.regulated }
func (s *Sequencer) EnableSignal() float64     { return s.enable }
func (s *Sequencer) Decision() Decision        { return s.decision.get() }

// DecidedAt is the elapsed time at which the check fired, NaN while
// undecided.
func (s *Sequencer) DecidedAt() float64 { return s.decidedAt }

// Verdict implements sim.Verdict.
func (s *Sequencer) Verdict() (string, bool) {
	d := s.decision.get()
	return d.String(), d.Terminal()
}

// DelayedPhase pairs each enable sample with the supply sample CheckDelay
// later, the trajectory the check effectively observes. Before CheckDelay
// has elapsed it returns the undelayed pairs.
func (s *Sequencer) DelayedPhase() (supply, enable []float64) {
	k := 0
	for _, t := range s.histT {
		if t < s.cfg.CheckDelay {
			k++
		}
	}
	if k == 0 || k >= len(s.histT) {
		return slices.Clone(s.histV), slices.Clone(s.histEn)
	}
	return slices.Clone(s.histV[k:]), slices.Clone(s.histEn[:len(s.histEn)-k])
}

func (s *Sequencer) Label() string    { return s.cfg.Label }
func (s *Sequencer) Kind() string     { return KindSequencer }
func (s *Sequencer) Elapsed() float64 { return s.elapsed }

func (s *Sequencer) Channels() []string {
	return []string{ChanSupply, ChanRegulated, ChanEnable}
}

func (s *Sequencer) Current() []float64 {
	return []float64{s.supply, s.regulated, s.enable}
}

func (s *Sequencer) Times() []float64 { return slices.Clone(s.histT) }

func (s *Sequencer) Trace(channel string) []float64 {
	switch channel {
	case ChanSupply:
		return slices.Clone(s.histV)
	case ChanRegulated:
		return slices.Clone(s.histReg)
	case ChanEnable:
		return slices.Clone(s.histEn)
	default:
		return nil
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

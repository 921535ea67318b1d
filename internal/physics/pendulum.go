package physics

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/simlab/internal/integrators"
	"github.com/san-kum/simlab/internal/sim"
)

const KindPendulum = "pendulum"

// History channel names exposed through sim.View.
const (
	ChanAngle        = "angle"
	ChanVelocity     = "angular_velocity"
	ChanAcceleration = "angular_acceleration"
)

type PendulumConfig struct {
	Label               string  `yaml:"label"`
	Length              float64 `yaml:"length"`
	Gravity             float64 `yaml:"gravity"`
	Friction            float64 `yaml:"friction"`
	InitAngle           float64 `yaml:"init_angle"`
	InitAngularVelocity float64 `yaml:"init_angular_velocity"`
	// Integrator selects the stepping scheme; empty means leapfrog.
	Integrator string `yaml:"integrator"`
}

func DefaultPendulumConfig() PendulumConfig {
	return PendulumConfig{
		Label:      "pendulum",
		Length:     0.5,
		Gravity:    9.81,
		Friction:   0,
		InitAngle:  math.Pi / 4,
		Integrator: "leapfrog",
	}
}

func (c PendulumConfig) Validate() error {
	if err := sim.Positive("length", c.Length); err != nil {
		return err
	}
	if err := sim.Positive("gravity", c.Gravity); err != nil {
		return err
	}
	if err := sim.NonNegative("friction", c.Friction); err != nil {
		return err
	}
	if err := sim.Finite("init_angle", c.InitAngle); err != nil {
		return err
	}
	return sim.Finite("init_angular_velocity", c.InitAngularVelocity)
}

// Pendulum is a damped simple pendulum. The angle is never wrapped so phase
// trajectories stay continuous across full rotations.
type Pendulum struct {
	cfg   PendulumConfig
	integ integrators.Integrator

	angle    float64
	velocity float64
	elapsed  float64

	histT   []float64
	histAng []float64
	histVel []float64
	histAcc []float64
}

func NewPendulum(cfg PendulumConfig) (*Pendulum, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pendulum %q: %w", cfg.Label, err)
	}
	name := cfg.Integrator
	if name == "" {
		name = "leapfrog"
	}
	integ, err := integrators.Get(name)
	if err != nil {
		return nil, fmt.Errorf("pendulum %q: %w", cfg.Label, err)
	}

	p := &Pendulum{
		cfg:      cfg,
		integ:    integ,
		angle:    cfg.InitAngle,
		velocity: cfg.InitAngularVelocity,
	}
	p.record(0, p.acceleration(p.angle, p.velocity))
	return p, nil
}

func (p *Pendulum) acceleration(theta, omega float64) float64 {
	return -p.cfg.Gravity/p.cfg.Length*math.Sin(theta) - p.cfg.Friction*omega
}

func (p *Pendulum) Step(dt float64) {
	sim.MustStep(dt)

	var acc float64
	p.angle, p.velocity, acc = p.integ.Step(p.acceleration, p.angle, p.velocity, dt)
	p.elapsed += dt
	p.record(p.elapsed, acc)
}

func (p *Pendulum) record(t, acc float64) {
	p.histT = append(p.histT, t)
	p.histAng = append(p.histAng, p.angle)
	p.histVel = append(p.histVel, p.velocity)
	p.histAcc = append(p.histAcc, acc)
}

func (p *Pendulum) Config() PendulumConfig   { return p.cfg }
func (p *Pendulum) Angle() float64           { return p.angle }
func (p *Pendulum) AngularVelocity() float64 { return p.velocity }

// AngularAcceleration is the acceleration recorded by the latest step.
func (p *Pendulum) AngularAcceleration() float64 {
	return p.histAcc[len(p.histAcc)-1]
}

// Energy is the mechanical energy per unit mass, zero at rest hanging down.
func (p *Pendulum) Energy() float64 {
	return EnergyAt(p.cfg, p.angle, p.velocity)
}

func EnergyAt(cfg PendulumConfig, theta, omega float64) float64 {
	v := cfg.Length * omega
	ke := 0.5 * v * v
	pe := cfg.Gravity * cfg.Length * (1.0 - math.Cos(theta))
	return ke + pe
}

// Bob returns the bob position with the pivot at the origin and y up.
func (p *Pendulum) Bob() (x, y float64) {
	return p.cfg.Length * math.Sin(p.angle), -p.cfg.Length * math.Cos(p.angle)
}

// EnergyHistory evaluates Energy at every recorded sample.
func (p *Pendulum) EnergyHistory() []float64 {
	out := make([]float64, len(p.histAng))
	for i := range p.histAng {
		out[i] = EnergyAt(p.cfg, p.histAng[i], p.histVel[i])
	}
	return out
}

func (p *Pendulum) Label() string    { return p.cfg.Label }
func (p *Pendulum) Kind() string     { return KindPendulum }
func (p *Pendulum) Elapsed() float64 { return p.elapsed }

func (p *Pendulum) Channels() []string {
	return []string{ChanAngle, ChanVelocity, ChanAcceleration}
}

func (p *Pendulum) Current() []float64 {
	return []float64{p.angle, p.velocity, p.AngularAcceleration()}
}

func (p *Pendulum) Times() []float64 { return slices.Clone(p.histT) }

func (p *Pendulum) Trace(channel string) []float64 {
	switch channel {
	case ChanAngle:
		return slices.Clone(p.histAng)
	case ChanVelocity:
		return slices.Clone(p.histVel)
	case ChanAcceleration:
		return slices.Clone(p.histAcc)
	default:
		return nil
	}
}

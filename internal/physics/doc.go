// Package physics provides the pendulum entity.
//
// [Pendulum] implements [sim.Entity]: each Step advances angle and angular
// velocity with a symplectic kick-drift-kick scheme and appends one sample to
// its history, so after N steps every trace holds N+1 values.
//
// # Energy Conservation
//
// With zero friction the leapfrog scheme keeps [Pendulum.Energy] bounded
// over long runs, where explicit Euler drifts:
//
//	p, _ := physics.NewPendulum(physics.PendulumConfig{Length: 0.5, Gravity: 9.81, InitAngle: 1})
//	for i := 0; i < 10000; i++ {
//	    p.Step(1.0 / 200)
//	}
//	drift := p.Energy() - p.EnergyHistory()[0]
package physics

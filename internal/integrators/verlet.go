package integrators

// Leapfrog is the kick-drift-kick scheme: half velocity update, full
// position update, then the second half velocity update using the
// acceleration at the new position and half-stepped velocity.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(f Field, x, v, dt float64) (float64, float64, float64) {
	halfDt := dt * 0.5

	a := f(x, v)
	v += a * halfDt
	x += v * dt

	a = f(x, v)
	v += a * halfDt

	return x, v, a
}

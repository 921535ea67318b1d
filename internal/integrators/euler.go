package integrators

// Euler is the naive explicit scheme. It does not conserve energy and is
// kept as a baseline for drift comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(f Field, x, v, dt float64) (float64, float64, float64) {
	a := f(x, v)
	x1 := x + v*dt
	v1 := v + a*dt
	return x1, v1, f(x1, v1)
}

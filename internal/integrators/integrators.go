// Package integrators advances a single degree of freedom (position,
// velocity) under an acceleration field.
package integrators

import (
	"fmt"
	"sort"
)

// Field returns the acceleration at position x and velocity v.
type Field func(x, v float64) float64

type Integrator interface {
	Name() string
	// Step returns the new position, velocity, and the acceleration
	// evaluated at the end of the step.
	Step(f Field, x, v, dt float64) (x1, v1, a1 float64)
}

var registry = map[string]func() Integrator{
	"leapfrog": func() Integrator { return NewLeapfrog() },
	"euler":    func() Integrator { return NewEuler() },
}

func Get(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

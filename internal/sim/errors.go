package sim

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for construction and driver setup.
var (
	// ErrInvalidParam indicates a configuration value outside its valid range.
	ErrInvalidParam = errors.New("sim: parameter out of valid bounds")

	// ErrInvalidStep indicates a non-positive or non-finite step size or rate.
	ErrInvalidStep = errors.New("sim: invalid step configuration")

	// ErrUnknownKind indicates an entity kind with no registered factory.
	ErrUnknownKind = errors.New("sim: unknown entity kind")

	// ErrUnknownPreset indicates a preset name that does not exist.
	ErrUnknownPreset = errors.New("sim: unknown preset")
)

// ParamError names the offending configuration field.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("sim: invalid %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParam
}

// Positive rejects values that are not finite and strictly positive.
func Positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &ParamError{Field: field, Value: v, Reason: "must be positive and finite"}
	}
	return nil
}

// NonNegative rejects values that are negative or not finite.
func NonNegative(field string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return &ParamError{Field: field, Value: v, Reason: "must be non-negative and finite"}
	}
	return nil
}

// Finite rejects NaN and infinities.
func Finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParamError{Field: field, Value: v, Reason: "must be finite"}
	}
	return nil
}

// MustStep panics when dt violates the Step contract. Entities call it first
// thing in Step: a bad dt is a caller bug, not a recoverable condition.
func MustStep(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		panic(fmt.Sprintf("sim: step size must be positive and finite, got %v", dt))
	}
}

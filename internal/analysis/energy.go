package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Trend summarises an energy trace against time.
type Trend struct {
	Slope     float64 // J/kg per second
	Intercept float64
	Mean      float64
	StdDev    float64
	// MaxDrift is max |E - E0| / |E0|, or the absolute spread when E0 is 0.
	MaxDrift float64
}

// EnergyTrend fits a least-squares line through (times, energy).
func EnergyTrend(times, energy []float64) (Trend, error) {
	if len(times) != len(energy) || len(energy) < 2 {
		return Trend{}, ErrTooShort
	}

	intercept, slope := stat.LinearRegression(times, energy, nil, false)
	mean, std := stat.MeanStdDev(energy, nil)

	e0 := energy[0]
	spread := math.Max(math.Abs(floats.Max(energy)-e0), math.Abs(floats.Min(energy)-e0))
	drift := spread
	if e0 != 0 {
		drift = spread / math.Abs(e0)
	}

	return Trend{
		Slope:     slope,
		Intercept: intercept,
		Mean:      mean,
		StdDev:    std,
		MaxDrift:  drift,
	}, nil
}

// Linspace returns n evenly spaced values over [lo, hi]; n == 1 yields lo.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

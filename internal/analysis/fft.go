package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooShort = errors.New("analysis: not enough samples")
	ErrNoSignal = errors.New("analysis: trace has no oscillating component")
)

// PowerSpectrum returns |X_k| for k in [0, n/2) of the mean-removed trace.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// trace sampled every dt seconds. The peak bin is refined by parabolic
// interpolation over its neighbours.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < 8 {
		return 0, ErrTooShort
	}
	if !(dt > 0) {
		return 0, errors.New("analysis: sample spacing must be positive")
	}

	ps := PowerSpectrum(data)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] < 1e-12 {
		return 0, ErrNoSignal
	}

	bin := float64(peak)
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}

	period := float64(len(data)) * dt / bin
	if math.IsNaN(period) || math.IsInf(period, 0) {
		return 0, ErrNoSignal
	}
	return period, nil
}

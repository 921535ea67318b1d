package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/simlab/internal/analysis"
	"github.com/san-kum/simlab/internal/integrators"
	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/sim"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("--dt %g: %w", dt, sim.ErrInvalidStep)
	}
	if steps < 1 {
		return fmt.Errorf("--steps %d: %w", steps, sim.ErrInvalidParam)
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	fmt.Printf("pendulum: L=%.2fm, θ0=%.1f°, dt=%g, %d steps\n\n", length, angle, dt, steps)
	fmt.Printf("%-12s %12s %12s %14s %10s\n", "integrator", "final angle", "max drift", "drift slope", "time")
	fmt.Println(strings.Repeat("-", 64))

	var series [][]float64
	for _, name := range names {
		cfg := physics.DefaultPendulumConfig()
		cfg.Label = name
		cfg.Length = length
		cfg.InitAngle = angle * math.Pi / 180
		cfg.Integrator = name

		p, err := physics.NewPendulum(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < steps; i++ {
			p.Step(dt)
		}
		elapsed := time.Since(start)

		energy := p.EnergyHistory()
		trend, err := analysis.EnergyTrend(p.Times(), energy)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Printf("%-12s %12.5f %12.3e %14.3e %10v\n",
			name, p.Angle(), trend.MaxDrift, trend.Slope, elapsed.Round(time.Microsecond))
		series = append(series, downsample(energy, 80))
	}

	if len(series) > 0 {
		fmt.Println()
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red, asciigraph.Green),
			asciigraph.Caption("energy per unit mass: "+strings.Join(names, ", "))))
	}
	return nil
}

func downsample(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = xs[i*(len(xs)-1)/(n-1)]
	}
	return out
}

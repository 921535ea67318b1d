package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/simlab/internal/analysis"
	"github.com/san-kum/simlab/internal/experiment"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Sweep = nil

	ctx, log := logging.WithRun(cmd.Context(), newLogger(cfg))
	exp, err := experiment.New(cfg, nil, log)
	if err != nil {
		return err
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	for _, v := range res.Views {
		switch e := v.(type) {
		case *physics.Pendulum:
			analyzePendulum(e)
		case *power.Sequencer:
			analyzeSequencer(e)
		}
		fmt.Println()
	}
	return nil
}

func analyzePendulum(p *physics.Pendulum) {
	cfg := p.Config()
	times := p.Times()
	fmt.Printf("== %s (%s)\n", p.Label(), cfg.Integrator)

	if len(times) < 2 {
		fmt.Println("not enough samples")
		return
	}
	sampleDt := times[1] - times[0]
	small := 2 * math.Pi * math.Sqrt(cfg.Length/cfg.Gravity)

	period, err := analysis.DominantPeriod(p.Trace(physics.ChanAngle), sampleDt)
	switch {
	case errors.Is(err, analysis.ErrNoSignal):
		fmt.Println("period:        no oscillation")
	case err != nil:
		fmt.Printf("period:        %v\n", err)
	default:
		fmt.Printf("period:        %.4fs (small-angle %.4fs, ratio %.3f)\n", period, small, period/small)
	}

	if trend, err := analysis.EnergyTrend(times, p.EnergyHistory()); err == nil {
		fmt.Printf("energy:        mean %.5f  std %.2e  max drift %.2e\n", trend.Mean, trend.StdDev, trend.MaxDrift)
	}

	ps := analysis.PowerSpectrum(p.Trace(physics.ChanAngle))
	if len(ps) > 64 {
		ps = ps[:64]
	}
	if len(ps) > 1 {
		fmt.Println(asciigraph.Plot(ps,
			asciigraph.Height(8),
			asciigraph.Width(64),
			asciigraph.Caption("angle spectrum, low bins")))
	}

	portrait := analysis.NewPhasePortrait(p.Trace(physics.ChanAngle), p.Trace(physics.ChanVelocity))
	fmt.Println("phase (angle vs angular velocity)")
	fmt.Println(portrait.ASCII(60, 15))
}

func analyzeSequencer(s *power.Sequencer) {
	verdict, _ := s.Verdict()
	fmt.Printf("== %s\n", s.Label())
	fmt.Printf("decision:      %s", verdict)
	if s.Decision().Terminal() {
		fmt.Printf(" at %.3fs", s.DecidedAt())
	}
	fmt.Println()
	if s.Decision().Terminal() {
		i := sort.SearchFloat64s(s.Times(), s.DecidedAt())
		if sample, ok := sim.At(s, i); ok {
			fmt.Printf("at check:      t=%.4fs", sample.Time)
			for j, ch := range s.Channels() {
				fmt.Printf("  %s %.4f", ch, sample.Values[j])
			}
			fmt.Println()
		}
	}
	fmt.Printf("final:         supply %.4fV  regulated %.4fV  enable %.0f\n",
		s.SupplyVoltage(), s.RegulatedVoltage(), s.EnableSignal())

	supply, enable := s.DelayedPhase()
	portrait := analysis.NewPhasePortrait(supply, enable)
	fmt.Println("phase (supply vs delayed enable)")
	fmt.Println(portrait.ASCII(60, 12))
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/experiment"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

func runSweep(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		preset = "bulk"
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Sweep == nil {
		cfg.Sweep = config.DefaultSweep()
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Sweep.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers = workers
	}
	if flags.Changed("steepness-count") {
		cfg.Sweep.SteepnessCount = steepnessCount
	}
	if flags.Changed("phase-count") {
		cfg.Sweep.PhaseCount = phaseCount
	}

	ctx, log := logging.WithRun(cmd.Context(), newLogger(cfg))
	collector, err := startMetrics(ctx, cfg, log)
	if err != nil {
		return err
	}
	var rec sim.Recorder
	if collector != nil {
		rec = collector
	}

	outcomes, err := experiment.Sweep(ctx, cfg.Sweep, cfg.Driver, log, rec)
	if err != nil {
		return err
	}
	printSweep(experiment.Summarize(outcomes))
	return nil
}

func printSweep(summary []experiment.SteepnessSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEEPNESS\tPASS\tFAIL\tUNDECIDED\tPASS RATE\tMEAN REGULATED")
	rates := make([]float64, 0, len(summary))
	for _, s := range summary {
		total := s.Pass + s.Fail + s.Undecided
		rate := 0.0
		if total > 0 {
			rate = float64(s.Pass) / float64(total)
		}
		rates = append(rates, 100*rate)
		fmt.Fprintf(w, "%.2f\t%d\t%d\t%d\t%.0f%%\t%.4f\n",
			s.Steepness, s.Pass, s.Fail, s.Undecided, 100*rate, s.MeanRegulated)
	}
	w.Flush()

	if len(rates) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rates,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(100),
			asciigraph.Caption("pass rate (%) by supply steepness, ascending")))
	}
}

func sweepDevices(s *config.SweepConfig) []power.Config {
	points := experiment.Grid(s)
	out := make([]power.Config, len(points))
	for i, pt := range points {
		out[i] = pt.Device(s.Base)
	}
	return out
}

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/san-kum/simlab/internal/experiment"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/sim"
	"github.com/san-kum/simlab/internal/tui"
	"github.com/san-kum/simlab/internal/viz"
)

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, log := logging.WithRun(cmd.Context(), newLogger(cfg))

	collector, err := startMetrics(ctx, cfg, log)
	if err != nil {
		return err
	}

	if len(cfg.Pendulums) > 0 || len(cfg.Devices) > 0 {
		exp, err := experiment.New(cfg, nil, log)
		if err != nil {
			return err
		}
		if collector != nil {
			exp.SetRecorder(collector)
		}
		if follow > 0 {
			ansi := isatty.IsTerminal(os.Stdout.Fd())
			r := tui.NewLiveRenderer(os.Stdout, follow, ansi)
			r.Start()
			defer r.Stop()
			exp.Driver().AddObserver(r)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		printViews(res.Views)
		printMetrics(res.Metrics)
		fmt.Printf("\n%d frames in %v\n", res.Frames, res.Wall)
	}

	if cfg.Sweep != nil {
		var rec sim.Recorder
		if collector != nil {
			rec = collector
		}
		outcomes, err := experiment.Sweep(ctx, cfg.Sweep, cfg.Driver, log, rec)
		if err != nil {
			return err
		}
		printSweep(experiment.Summarize(outcomes))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Sweep != nil {
		cfg.Devices = append(cfg.Devices, sweepDevices(cfg.Sweep)...)
		cfg.Sweep = nil
	}

	// Log lines would tear the full-screen view.
	log := logging.Noop()
	ctx := cmd.Context()

	collector, err := startMetrics(ctx, cfg, log)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil, log)
	if err != nil {
		return err
	}
	if collector != nil {
		exp.SetRecorder(collector)
	}

	title := "simlab"
	if preset != "" {
		title = preset
	}
	m := viz.NewModel(ctx, exp.Driver(), title).WithTheme(theme)
	return viz.Run(ctx, m)
}

func printViews(views []sim.View) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tKIND\tELAPSED\tSAMPLES\tSTATE\tVERDICT")
	for _, v := range views {
		var state []string
		cur := v.Current()
		for i, ch := range v.Channels() {
			state = append(state, fmt.Sprintf("%s=%.4f", ch, cur[i]))
		}
		verdict := "-"
		if vd, ok := v.(sim.Verdict); ok {
			verdict, _ = vd.Verdict()
		}
		fmt.Fprintf(w, "%s\t%s\t%.3fs\t%d\t%s\t%s\n",
			v.Label(), v.Kind(), v.Elapsed(), len(v.Times()), strings.Join(state, " "), verdict)
	}
	w.Flush()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, m[name])
	}
	w.Flush()
}

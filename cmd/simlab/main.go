package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/observability"
)

var (
	configFile  string
	preset      string
	fps         float64
	substeps    int
	frames      int
	parallel    bool
	logLevel    string
	logFormat   string
	metricsAddr string
	// run
	follow int
	// live
	theme string
	// sweep
	seed           int64
	workers        int
	steepnessCount int
	phaseCount     int
	// compare
	angle  float64
	length float64
	dt     float64
	steps  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "simlab",
		Short:         "pendulum and power sequencer simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Float64Var(&fps, "fps", config.DefaultFPS, "frames per simulated second")
	pf.IntVar(&substeps, "substeps", config.DefaultSubSteps, "integration steps per frame")
	pf.IntVar(&frames, "frames", config.DefaultFrames, "frames to run, 0 runs to the horizon")
	pf.BoolVar(&parallel, "parallel", false, "step entities concurrently")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "text", "text or json")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a configuration headless and print a summary",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&follow, "follow", 0, "print a status block every N frames")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a configuration with the live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the bulk device sweep and summarise pass/fail by steepness",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed, 0 uses the clock")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent devices, 0 uses GOMAXPROCS")
	sweepCmd.Flags().IntVar(&steepnessCount, "steepness-count", 5, "supply steepness values")
	sweepCmd.Flags().IntVar(&phaseCount, "phase-count", 21, "ripple phase values")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same pendulum",
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&angle, "angle", 60, "initial angle in degrees")
	compareCmd.Flags().Float64Var(&length, "length", 0.5, "pendulum length (m)")
	compareCmd.Flags().Float64Var(&dt, "dt", 1.0/200, "timestep")
	compareCmd.Flags().IntVar(&steps, "steps", 10000, "steps to run")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "spectral and phase analysis of a finished run",
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the selected configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, compareCmd, analyzeCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flag set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Driver.FPS = fps
	}
	if flags.Changed("substeps") {
		cfg.Driver.SubSteps = substeps
	}
	if flags.Changed("frames") {
		cfg.Driver.Frames = frames
	}
	if flags.Changed("parallel") {
		cfg.Driver.Parallel = parallel
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

// startMetrics registers the collector and, when an address is configured,
// serves it until ctx ends. It returns nil when metrics are disabled.
func startMetrics(ctx context.Context, cfg *config.Config, log logging.Logger) (*observability.Collector, error) {
	if cfg.Metrics.Addr == "" {
		return nil, nil
	}
	c, err := observability.NewCollector(nil)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := observability.Serve(ctx, cfg.Metrics.Addr, c, log); err != nil {
			log.Error(ctx, "metrics server stopped", logging.Err(err))
		}
	}()
	return c, nil
}

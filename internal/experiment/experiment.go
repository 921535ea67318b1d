// Package experiment assembles drivers from run configs and runs device
// sweeps.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/metrics"
	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

type Experiment struct {
	cfg     *config.Config
	log     logging.Logger
	driver  *sim.Driver
	metrics *metrics.Set
}

type Result struct {
	Frames  int
	Wall    time.Duration
	Views   []sim.View
	Metrics map[string]float64
}

// New validates cfg and builds a driver over every entity it describes.
func New(cfg *config.Config, reg *Registry, log logging.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if log == nil {
		log = logging.Noop()
	}

	entities, err := reg.Build(cfg)
	if err != nil {
		return nil, err
	}

	driver, err := sim.New(cfg.Driver.Sim(), log, entities...)
	if err != nil {
		return nil, err
	}

	set := metrics.NewSet(
		metrics.NewEnergyDrift(),
		metrics.NewPeak(physics.ChanVelocity),
		metrics.NewPassRate(),
		metrics.NewPeak(power.ChanRegulated),
	)
	driver.AddObserver(set)

	return &Experiment{
		cfg:     cfg,
		log:     log,
		driver:  driver,
		metrics: set,
	}, nil
}

func (e *Experiment) Driver() *sim.Driver { return e.driver }

func (e *Experiment) SetRecorder(r sim.Recorder) { e.driver.SetRecorder(r) }

// Run steps the configured number of frames, or until every entity finishes
// when Frames <= 0.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := e.driver.Run(ctx, e.cfg.Driver.Frames); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	res := &Result{
		Frames:  e.driver.Frames(),
		Wall:    time.Since(start),
		Views:   e.driver.Views(),
		Metrics: e.metrics.Report(),
	}
	e.log.Info(ctx, "experiment finished",
		logging.Int("frames", res.Frames),
		logging.Int("entities", len(res.Views)),
		logging.Any("wall", res.Wall),
	)
	return res, nil
}

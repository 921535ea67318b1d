package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/simlab/internal/analysis"
	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

type Point struct {
	Steepness float64
	Phase     float64
}

// Device derives the sequencer config for this grid point from base.
func (p Point) Device(base power.Config) power.Config {
	cfg := base
	cfg.SupplySteepness = p.Steepness
	cfg.RipplePhase = p.Phase
	cfg.Label = fmt.Sprintf("k=%.1f φ=%.2f", p.Steepness, p.Phase)
	return cfg
}

type Outcome struct {
	Point
	Label     string
	Decision  power.Decision
	DecidedAt float64
	Regulated float64
}

// Grid crosses the steepness range with ripple phases over [0, 2π] and
// shuffles the result. A zero seed shuffles from the clock.
func Grid(s *config.SweepConfig) []Point {
	steep := analysis.Linspace(s.SteepnessMin, s.SteepnessMax, s.SteepnessCount)
	phases := analysis.Linspace(0, 2*math.Pi, s.PhaseCount)

	points := make([]Point, 0, len(steep)*len(phases))
	for _, k := range steep {
		for _, ph := range phases {
			points = append(points, Point{Steepness: k, Phase: ph})
		}
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})
	return points
}

// Sweep runs one device per grid point to its horizon, each on its own
// driver. Outcomes keep grid order.
func Sweep(ctx context.Context, s *config.SweepConfig, drv config.DriverConfig, log logging.Logger, rec sim.Recorder) ([]Outcome, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := drv.Sim().Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	points := Grid(s)
	outcomes := make([]Outcome, len(points))

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if rec != nil {
		rec.SetEntities(power.KindSequencer, len(points))
		rec = gridRecorder{rec}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pt := range points {
		g.Go(func() error {
			cfg := pt.Device(s.Base)

			dev, err := power.NewSequencer(cfg)
			if err != nil {
				return err
			}
			d, err := sim.New(drv.Sim(), logging.Noop(), dev)
			if err != nil {
				return err
			}
			if rec != nil {
				d.SetRecorder(rec)
			}
			if err := d.Run(ctx, 0); err != nil {
				return err
			}

			outcomes[i] = Outcome{
				Point:     pt,
				Label:     cfg.Label,
				Decision:  dev.Decision(),
				DecidedAt: dev.DecidedAt(),
				Regulated: dev.RegulatedVoltage(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	log.Info(ctx, "sweep finished",
		logging.Int("devices", len(outcomes)),
		logging.Int("workers", workers),
	)
	return outcomes, nil
}

// gridRecorder forwards per-device driver activity but leaves the entity
// gauge to Sweep, which knows the grid size. Each device runs on its own
// one-entity driver.
type gridRecorder struct {
	sim.Recorder
}

func (gridRecorder) SetEntities(string, int) {}

type SteepnessSummary struct {
	Steepness     float64
	Pass          int
	Fail          int
	Undecided     int
	MeanRegulated float64
}

// Summarize groups outcomes by steepness, in ascending order.
func Summarize(outcomes []Outcome) []SteepnessSummary {
	byK := make(map[float64][]Outcome)
	for _, o := range outcomes {
		byK[o.Steepness] = append(byK[o.Steepness], o)
	}

	out := make([]SteepnessSummary, 0, len(byK))
	for k, group := range byK {
		sum := SteepnessSummary{Steepness: k}
		reg := make([]float64, len(group))
		for i, o := range group {
			switch o.Decision {
			case power.Pass:
				sum.Pass++
			case power.Fail:
				sum.Fail++
			default:
				sum.Undecided++
			}
			reg[i] = o.Regulated
		}
		sum.MeanRegulated = stat.Mean(reg, nil)
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Steepness < out[j].Steepness })
	return out
}

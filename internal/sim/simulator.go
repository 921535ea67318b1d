package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/simlab/internal/logging"
)

// Driver owns a set of entities and advances them frame by frame. A frame is
// SubSteps calls of Step(Dt) on every entity, followed by observer callbacks.
type Driver struct {
	cfg       Config
	dt        float64
	log       logging.Logger
	entities  []Entity
	reported  []bool
	observers []Observer
	recorder  Recorder
	frame     int
}

func New(cfg Config, log logging.Logger, entities ...Entity) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fps=%g substeps=%d: %w", cfg.FPS, cfg.SubSteps, err)
	}
	if log == nil {
		log = logging.Noop()
	}
	d := &Driver{
		cfg:       cfg,
		dt:        cfg.Dt(),
		log:       log,
		entities:  make([]Entity, 0, len(entities)),
		reported:  make([]bool, 0, len(entities)),
		observers: make([]Observer, 0),
		recorder:  nopRecorder{},
	}
	for _, e := range entities {
		d.Add(e)
	}
	return d, nil
}

func (d *Driver) Add(e Entity) {
	d.entities = append(d.entities, e)
	d.reported = append(d.reported, false)
	d.recorder.SetEntities(e.Kind(), d.count(e.Kind()))
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// SetRecorder routes frame, step and verdict counts to r. A nil r disables
// recording.
func (d *Driver) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	d.recorder = r
	seen := make(map[string]bool)
	for _, e := range d.entities {
		if !seen[e.Kind()] {
			seen[e.Kind()] = true
			r.SetEntities(e.Kind(), d.count(e.Kind()))
		}
	}
}

func (d *Driver) Dt() float64    { return d.dt }
func (d *Driver) Frames() int    { return d.frame }
func (d *Driver) Config() Config { return d.cfg }

// Views returns the read-only side of every owned entity, in insertion order.
func (d *Driver) Views() []View {
	views := make([]View, len(d.entities))
	for i, e := range d.entities {
		views[i] = e
	}
	return views
}

// Frame advances every entity by one frame. Finished entities are skipped.
func (d *Driver) Frame(ctx context.Context) {
	start := time.Now()

	active := d.active()
	if d.cfg.Parallel {
		ParallelFor(len(active), 8, func(lo, hi int) {
			for _, e := range active[lo:hi] {
				d.advance(e)
			}
		})
	} else {
		for _, e := range active {
			d.advance(e)
		}
	}

	d.frame++
	d.recordSteps(active)
	d.reportVerdicts(ctx)
	d.recorder.ObserveFrame(time.Since(start))

	if len(d.observers) > 0 {
		views := d.Views()
		for _, o := range d.observers {
			o.OnFrame(d.frame, views)
		}
	}
}

// Run advances frames until the count is reached or ctx is done. With
// frames <= 0 it runs until every entity reports Done; that requires all
// entities to implement Finisher.
func (d *Driver) Run(ctx context.Context, frames int) error {
	if frames <= 0 {
		for _, e := range d.entities {
			if _, ok := e.(Finisher); !ok {
				return fmt.Errorf("%s %q has no horizon, frame count required: %w", e.Kind(), e.Label(), ErrInvalidStep)
			}
		}
	}

	d.log.Debug(ctx, "driver started",
		logging.Int("entities", len(d.entities)),
		logging.Float("dt", d.dt),
		logging.Int("frames", frames),
	)

	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if frames <= 0 && d.Done() {
			break
		}
		d.Frame(ctx)
	}

	d.log.Debug(ctx, "driver stopped", logging.Int("frame", d.frame))
	return nil
}

// Done reports whether every Finisher entity has reached its horizon.
// Entities without a horizon never finish.
func (d *Driver) Done() bool {
	for _, e := range d.entities {
		f, ok := e.(Finisher)
		if !ok || !f.Done() {
			return false
		}
	}
	return true
}

func (d *Driver) active() []Entity {
	active := make([]Entity, 0, len(d.entities))
	for _, e := range d.entities {
		if f, ok := e.(Finisher); ok && f.Done() {
			continue
		}
		active = append(active, e)
	}
	return active
}

func (d *Driver) advance(e Entity) {
	for i := 0; i < d.cfg.SubSteps; i++ {
		e.Step(d.dt)
	}
}

func (d *Driver) recordSteps(active []Entity) {
	perKind := make(map[string]int)
	for _, e := range active {
		perKind[e.Kind()] += d.cfg.SubSteps
	}
	for kind, n := range perKind {
		d.recorder.AddSteps(kind, n)
	}
}

func (d *Driver) reportVerdicts(ctx context.Context) {
	for i, e := range d.entities {
		if d.reported[i] {
			continue
		}
		v, ok := e.(Verdict)
		if !ok {
			continue
		}
		name, decided := v.Verdict()
		if !decided {
			continue
		}
		d.reported[i] = true
		d.recorder.ObserveVerdict(e.Kind(), name)
		d.log.Info(ctx, "verdict latched",
			logging.String("kind", e.Kind()),
			logging.String("label", e.Label()),
			logging.String("verdict", name),
			logging.Float("t", e.Elapsed()),
		)
	}
}

func (d *Driver) count(kind string) int {
	n := 0
	for _, e := range d.entities {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

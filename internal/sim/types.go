package sim

import "time"

// View is the read-only surface a renderer consumes. Channels and Current are
// index-aligned; every Trace is index-aligned with Times. Returned slices are
// copies and may be retained by the caller.
type View interface {
	Label() string
	Kind() string
	Elapsed() float64
	Channels() []string
	Current() []float64
	Times() []float64
	Trace(channel string) []float64
}

// Entity is a self-contained state machine advanced in fixed sub-steps.
type Entity interface {
	View
	Step(dt float64)
}

// Verdict is implemented by entities that latch a terminal outcome.
type Verdict interface {
	Verdict() (name string, decided bool)
}

// Finisher is implemented by entities whose stepping stops at a horizon.
type Finisher interface {
	Done() bool
}

// Recorder receives driver activity; observability plugs in here.
type Recorder interface {
	ObserveFrame(d time.Duration)
	AddSteps(kind string, n int)
	ObserveVerdict(kind, verdict string)
	SetEntities(kind string, n int)
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(frame int, views []View)
}

type Config struct {
	FPS      float64
	SubSteps int
	Parallel bool
}

func DefaultConfig() Config {
	return Config{
		FPS:      20,
		SubSteps: 1,
	}
}

// Dt is the sub-step size: one frame is SubSteps steps of Dt seconds.
func (c Config) Dt() float64 {
	return 1 / (c.FPS * float64(c.SubSteps))
}

// Validate rejects non-positive or non-finite rates with ErrInvalidStep.
func (c Config) Validate() error {
	if err := Positive("fps", c.FPS); err != nil {
		return ErrInvalidStep
	}
	if c.SubSteps <= 0 {
		return ErrInvalidStep
	}
	return nil
}

// Sample is one index of a view's history.
type Sample struct {
	Time   float64
	Values []float64
}

// At returns the history sample at index i across all channels of v.
func At(v View, i int) (Sample, bool) {
	times := v.Times()
	if i < 0 || i >= len(times) {
		return Sample{}, false
	}
	chans := v.Channels()
	s := Sample{Time: times[i], Values: make([]float64, len(chans))}
	for j, name := range chans {
		s.Values[j] = v.Trace(name)[i]
	}
	return s, true
}

type nopRecorder struct{}

func (nopRecorder) ObserveFrame(time.Duration)    {}
func (nopRecorder) AddSteps(string, int)          {}
func (nopRecorder) ObserveVerdict(string, string) {}
func (nopRecorder) SetEntities(string, int)       {}

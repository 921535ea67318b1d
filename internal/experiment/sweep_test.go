package experiment

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/observability"
	"github.com/san-kum/simlab/internal/power"
)

type countingRecorder struct {
	mu       sync.Mutex
	verdicts map[string]int
	entities map[string][]int
}

func (r *countingRecorder) ObserveFrame(time.Duration) {}
func (r *countingRecorder) AddSteps(string, int)       {}

func (r *countingRecorder) SetEntities(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entities == nil {
		r.entities = make(map[string][]int)
	}
	r.entities[kind] = append(r.entities[kind], n)
}

func (r *countingRecorder) ObserveVerdict(_, verdict string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verdicts[verdict]++
}

func bulk(t *testing.T) (*config.SweepConfig, config.DriverConfig) {
	t.Helper()
	cfg, err := config.GetPreset("bulk")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sweep.Seed = 42
	cfg.Sweep.Workers = 4
	return cfg.Sweep, cfg.Driver
}

func TestGridShuffledAndComplete(t *testing.T) {
	s, _ := bulk(t)
	points := Grid(s)
	if len(points) != 105 {
		t.Fatalf("points = %d, want 105", len(points))
	}

	seen := make(map[Point]bool)
	ordered := true
	for i, p := range points {
		seen[p] = true
		if i > 0 && p.Steepness < points[i-1].Steepness {
			ordered = false
		}
	}
	if len(seen) != 105 {
		t.Errorf("unique points = %d, want 105", len(seen))
	}
	if ordered {
		t.Error("grid was not shuffled")
	}

	again := Grid(s)
	for i := range points {
		if points[i] != again[i] {
			t.Fatal("same seed produced a different order")
		}
	}
}

func TestSweepBulk(t *testing.T) {
	s, drv := bulk(t)
	rec := &countingRecorder{verdicts: make(map[string]int)}

	outcomes, err := Sweep(context.Background(), s, drv, nil, rec)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(outcomes) != 105 {
		t.Fatalf("outcomes = %d, want 105", len(outcomes))
	}

	var pass, fail int
	for _, o := range outcomes {
		switch o.Decision {
		case power.Pass:
			pass++
		case power.Fail:
			fail++
		default:
			t.Errorf("%s finished undecided", o.Label)
		}
		if math.Abs(o.Steepness-3) < 1e-9 && math.Abs(o.Phase-math.Pi) < 1e-9 && o.Decision != power.Fail {
			t.Errorf("%s: got %v, want fail", o.Label, o.Decision)
		}
		if math.Abs(o.Steepness-7) < 1e-9 && o.Phase == 0 && o.Decision != power.Pass {
			t.Errorf("%s: got %v, want pass", o.Label, o.Decision)
		}
	}
	if rec.verdicts["pass"] != pass || rec.verdicts["fail"] != fail {
		t.Errorf("recorded verdicts %v, counted pass=%d fail=%d", rec.verdicts, pass, fail)
	}

	summary := Summarize(outcomes)
	if len(summary) != 5 {
		t.Fatalf("summary rows = %d, want 5", len(summary))
	}
	for i, row := range summary {
		if row.Pass+row.Fail != 21 {
			t.Errorf("steepness %v has %d outcomes, want 21", row.Steepness, row.Pass+row.Fail)
		}
		// A steeper supply is never lower at any instant, so passes cannot drop.
		if i > 0 && row.Pass < summary[i-1].Pass {
			t.Errorf("pass count fell from %d to %d at steepness %v", summary[i-1].Pass, row.Pass, row.Steepness)
		}
	}
}

func TestSweepCancelled(t *testing.T) {
	s, drv := bulk(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sweep(ctx, s, drv, nil, nil); err == nil {
		t.Error("cancelled sweep returned no error")
	}
}

func TestSweepRejectsInvalid(t *testing.T) {
	s, drv := bulk(t)
	s.SteepnessCount = 0
	if _, err := Sweep(context.Background(), s, drv, nil, nil); err == nil {
		t.Error("invalid sweep accepted")
	}
}

func TestPointDeviceKeepsBase(t *testing.T) {
	base := power.DefaultConfig()
	base.Threshold = 0.7

	cfg := Point{Steepness: 4, Phase: math.Pi}.Device(base)
	if cfg.SupplySteepness != 4 || cfg.RipplePhase != math.Pi {
		t.Fatalf("point not applied: %+v", cfg)
	}
	if cfg.Threshold != 0.7 || cfg.Horizon != base.Horizon {
		t.Errorf("base fields lost: %+v", cfg)
	}
	if cfg.Label == base.Label || cfg.Label == "" {
		t.Errorf("label not derived: %q", cfg.Label)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("derived config invalid: %v", err)
	}
}

func TestSweepEntityGaugeIsGridSize(t *testing.T) {
	s, drv := bulk(t)
	s.PhaseCount = 3
	rec := &countingRecorder{verdicts: make(map[string]int)}

	if _, err := Sweep(context.Background(), s, drv, nil, rec); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	got := rec.entities[power.KindSequencer]
	if len(got) != 1 || got[0] != 15 {
		t.Errorf("entity gauge updates = %v, want one update of 15", got)
	}
}

func TestSweepCollectorGauge(t *testing.T) {
	s, drv := bulk(t)
	c, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Sweep(context.Background(), s, drv, nil, c); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if got := testutil.ToFloat64(c.Entities.WithLabelValues(power.KindSequencer)); got != 105 {
		t.Errorf("simlab_entities{kind=adc} = %v, want 105", got)
	}
	pass := testutil.ToFloat64(c.Decisions.WithLabelValues(power.KindSequencer, "pass"))
	fail := testutil.ToFloat64(c.Decisions.WithLabelValues(power.KindSequencer, "fail"))
	if pass+fail != 105 {
		t.Errorf("decisions = %v pass + %v fail, want 105", pass, fail)
	}
}

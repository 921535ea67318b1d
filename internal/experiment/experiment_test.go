package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/logging"
	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

func TestRegistryBuild(t *testing.T) {
	cfg, err := config.GetPreset("pendulums")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Devices = []power.Config{power.DefaultConfig(), power.DefaultConfig()}
	cfg.Devices[1].Label = ""

	r := NewRegistry()
	entities, err := r.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(entities) != 4 {
		t.Fatalf("entities = %d, want 4", len(entities))
	}
	if entities[0].Kind() != power.KindSequencer || entities[2].Kind() != physics.KindPendulum {
		t.Errorf("kinds not in sorted registry order: %s, %s", entities[0].Kind(), entities[2].Kind())
	}
	if entities[1].Label() != "device-1" {
		t.Errorf("unlabelled device got %q", entities[1].Label())
	}

	only, err := r.Build(cfg, physics.KindPendulum)
	if err != nil || len(only) != 2 {
		t.Errorf("Build(pendulum) = %d entities, err %v", len(only), err)
	}

	if _, err := r.Build(cfg, "rocket"); !errors.Is(err, sim.ErrUnknownKind) {
		t.Errorf("unknown kind error = %v", err)
	}

	cfg.Pendulums[0].Gravity = 0
	if _, err := r.Build(cfg); !errors.Is(err, sim.ErrInvalidParam) {
		t.Errorf("invalid pendulum error = %v", err)
	}
}

func TestExperimentRunNominalDevice(t *testing.T) {
	cfg, err := config.GetPreset("nominal")
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(cfg, nil, logging.Noop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 1.5 s horizon at 1/120 s steps, 10 per frame.
	if res.Frames < 18 || res.Frames > 19 {
		t.Errorf("frames = %d, want 18 or 19", res.Frames)
	}
	if res.Metrics["pass_rate"] != 1 {
		t.Errorf("pass_rate = %v, want 1", res.Metrics["pass_rate"])
	}
	dev := res.Views[0].(*power.Sequencer)
	if dev.Decision() != power.Pass {
		t.Errorf("decision = %v, want pass", dev.Decision())
	}
}

func TestExperimentRunPendulums(t *testing.T) {
	cfg, err := config.GetPreset("small")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Driver.Frames = 100

	e, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.Views[0].Elapsed(); math.Abs(got-5) > 1e-9 {
		t.Errorf("elapsed = %v, want 5", got)
	}
	if res.Metrics["energy_drift"] > 0.05 {
		t.Errorf("energy drift = %v", res.Metrics["energy_drift"])
	}
	if res.Metrics["peak_angular_velocity"] == 0 {
		t.Error("peak angular velocity not recorded")
	}
}

func TestExperimentRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Driver.SubSteps = 0
	if _, err := New(cfg, nil, nil); !errors.Is(err, sim.ErrInvalidStep) {
		t.Errorf("error = %v, want ErrInvalidStep", err)
	}
}

func TestExperimentUnboundedPendulumFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Driver.Frames = 0
	e, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); !errors.Is(err, sim.ErrInvalidStep) {
		t.Errorf("error = %v, want ErrInvalidStep", err)
	}
}

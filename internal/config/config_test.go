package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/simlab/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Driver.FPS != 20 || cfg.Driver.SubSteps != 1 {
		t.Errorf("driver = %+v, want 20 fps x 1", cfg.Driver)
	}
	if len(cfg.Pendulums) != 1 {
		t.Fatalf("pendulums = %d, want 1", len(cfg.Pendulums))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParsePartialEntriesKeepDefaults(t *testing.T) {
	data := []byte(`
driver:
  fps: 12
  substeps: 10
  frames: 0
pendulums:
  - label: short
    length: 0.03
devices:
  - label: slow
    supply_steepness: 3
sweep:
  phase_count: 4
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Driver.FPS != 12 || cfg.Driver.SubSteps != 10 || cfg.Driver.Frames != 0 {
		t.Errorf("driver = %+v", cfg.Driver)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want default info", cfg.Log.Level)
	}

	p := cfg.Pendulums[0]
	if p.Length != 0.03 || p.Gravity != 9.81 || p.InitAngle != math.Pi/4 || p.Integrator != "leapfrog" {
		t.Errorf("pendulum = %+v", p)
	}

	d := cfg.Devices[0]
	if d.SupplySteepness != 3 || d.Threshold != 2.45 || d.Horizon != 1.5 {
		t.Errorf("device = %+v", d)
	}

	if cfg.Sweep.PhaseCount != 4 || cfg.Sweep.SteepnessCount != 5 || cfg.Sweep.Base.RegulatorMax != 5 {
		t.Errorf("sweep = %+v", cfg.Sweep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero fps", func(c *Config) { c.Driver.FPS = 0 }, sim.ErrInvalidStep},
		{"zero substeps", func(c *Config) { c.Driver.SubSteps = 0 }, sim.ErrInvalidStep},
		{"empty", func(c *Config) { c.Pendulums = nil }, sim.ErrInvalidParam},
		{"bad pendulum", func(c *Config) { c.Pendulums[0].Length = -1 }, sim.ErrInvalidParam},
		{"bad sweep", func(c *Config) {
			c.Sweep = DefaultSweep()
			c.Sweep.PhaseCount = 0
		}, sim.ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg, err := GetPreset("pendulums")
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Pendulums) != 2 || got.Pendulums[1].Label != "big-swing" || got.Pendulums[1].Length != 0.6 {
		t.Errorf("loaded pendulums = %+v", got.Pendulums)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("small")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if cfg.Pendulums[0].Length != 0.4 {
		t.Errorf("expected length 0.4, got %f", cfg.Pendulums[0].Length)
	}

	cfg.Pendulums[0].Length = 99
	again, _ := GetPreset("small")
	if again.Pendulums[0].Length != 0.4 {
		t.Error("preset mutated through a previous copy")
	}

	bulk, err := GetPreset("bulk")
	if err != nil {
		t.Fatal(err)
	}
	if bulk.Driver.FPS != 12 || bulk.Driver.SubSteps != 10 || bulk.Sweep == nil {
		t.Errorf("bulk = %+v", bulk)
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if _, err := GetPreset("nonexistent"); !errors.Is(err, sim.ErrUnknownPreset) {
		t.Errorf("error = %v, want ErrUnknownPreset", err)
	}
}

func TestListPresetsAllValid(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for _, name := range names {
		cfg, err := GetPreset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if Describe(name) == "" {
			t.Errorf("preset %s has no description", name)
		}
	}
}

func TestSaveLoadKeepsSweep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulk.yaml")
	cfg, err := GetPreset("bulk")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sweep.SteepnessMin = 1
	cfg.Sweep.PhaseCount = 4
	cfg.Sweep.Seed = 42
	cfg.Sweep.Workers = 3
	cfg.Sweep.Base.Threshold = 2.0
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Sweep == nil {
		t.Fatal("sweep dropped on load")
	}
	s := got.Sweep
	if s.SteepnessMin != 1 || s.PhaseCount != 4 || s.Seed != 42 || s.Workers != 3 || s.Base.Threshold != 2.0 {
		t.Errorf("loaded sweep = %+v", s)
	}
	if s.SteepnessMax != 7 || s.SteepnessCount != 5 {
		t.Errorf("untouched sweep fields changed: %+v", s)
	}
}

func TestParseWithoutSweep(t *testing.T) {
	cfg, err := Parse([]byte("pendulums:\n  - length: 0.2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweep != nil {
		t.Errorf("sweep = %+v, want nil", cfg.Sweep)
	}
}

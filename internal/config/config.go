// Package config loads simulation runs from YAML files and named presets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

const (
	DefaultFPS      = 20.0
	DefaultSubSteps = 1
	DefaultFrames   = 400

	// Device runs keep the bring-up demo pacing: 12 frames of 10 sub-steps
	// per simulated second.
	DeviceFPS      = 12.0
	DeviceSubSteps = 10
)

type Config struct {
	Driver    DriverConfig             `yaml:"driver"`
	Log       LogConfig                `yaml:"log"`
	Metrics   MetricsConfig            `yaml:"metrics"`
	Pendulums []physics.PendulumConfig `yaml:"pendulums,omitempty"`
	Devices   []power.Config           `yaml:"devices,omitempty"`
	Sweep     *SweepConfig             `yaml:"sweep,omitempty"`
}

type DriverConfig struct {
	FPS      float64 `yaml:"fps"`
	SubSteps int     `yaml:"substeps"`
	// Frames <= 0 runs until every entity reaches its horizon.
	Frames   int  `yaml:"frames"`
	Parallel bool `yaml:"parallel"`
}

func (d DriverConfig) Sim() sim.Config {
	return sim.Config{FPS: d.FPS, SubSteps: d.SubSteps, Parallel: d.Parallel}
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// SweepConfig describes a device grid: every steepness crossed with every
// ripple phase in [0, 2π], built on top of Base.
type SweepConfig struct {
	Base           power.Config `yaml:"base"`
	SteepnessMin   float64      `yaml:"steepness_min"`
	SteepnessMax   float64      `yaml:"steepness_max"`
	SteepnessCount int          `yaml:"steepness_count"`
	PhaseCount     int          `yaml:"phase_count"`
	Seed           int64        `yaml:"seed"`
	Workers        int          `yaml:"workers"`
}

func DefaultSweep() *SweepConfig {
	return &SweepConfig{
		Base:           power.DefaultConfig(),
		SteepnessMin:   3,
		SteepnessMax:   7,
		SteepnessCount: 5,
		PhaseCount:     21,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Driver: DriverConfig{
			FPS:      DefaultFPS,
			SubSteps: DefaultSubSteps,
			Frames:   DefaultFrames,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Pendulums: []physics.PendulumConfig{physics.DefaultPendulumConfig()},
	}
}

func (c *Config) Validate() error {
	if err := c.Driver.Sim().Validate(); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	if len(c.Pendulums) == 0 && len(c.Devices) == 0 && c.Sweep == nil {
		return fmt.Errorf("config: no pendulums, devices or sweep: %w", sim.ErrInvalidParam)
	}
	for i, p := range c.Pendulums {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pendulums[%d]: %w", i, err)
		}
	}
	for i, d := range c.Devices {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
	}
	if c.Sweep != nil {
		if err := c.Sweep.Validate(); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}
	return nil
}

func (s *SweepConfig) Validate() error {
	if s.SteepnessCount <= 0 {
		return &sim.ParamError{Field: "steepness_count", Value: float64(s.SteepnessCount), Reason: "must be positive"}
	}
	if s.PhaseCount <= 0 {
		return &sim.ParamError{Field: "phase_count", Value: float64(s.PhaseCount), Reason: "must be positive"}
	}
	if s.SteepnessMax < s.SteepnessMin {
		return &sim.ParamError{Field: "steepness_max", Value: s.SteepnessMax, Reason: "must not be below steepness_min"}
	}
	if err := sim.NonNegative("steepness_min", s.SteepnessMin); err != nil {
		return err
	}
	return s.Base.Validate()
}

// rawConfig defers entity decoding so each entry can start from its
// defaults and only override the keys present in the file.
type rawConfig struct {
	Driver    DriverConfig  `yaml:"driver"`
	Log       LogConfig     `yaml:"log"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Pendulums []yaml.Node   `yaml:"pendulums"`
	Devices   []yaml.Node   `yaml:"devices"`
	Sweep     yaml.Node     `yaml:"sweep"`
}

func Parse(data []byte) (*Config, error) {
	def := DefaultConfig()
	raw := rawConfig{Driver: def.Driver, Log: def.Log}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &Config{Driver: raw.Driver, Log: raw.Log, Metrics: raw.Metrics}
	for i := range raw.Pendulums {
		p := physics.DefaultPendulumConfig()
		if err := raw.Pendulums[i].Decode(&p); err != nil {
			return nil, fmt.Errorf("pendulums[%d]: %w", i, err)
		}
		cfg.Pendulums = append(cfg.Pendulums, p)
	}
	for i := range raw.Devices {
		d := power.DefaultConfig()
		if err := raw.Devices[i].Decode(&d); err != nil {
			return nil, fmt.Errorf("devices[%d]: %w", i, err)
		}
		cfg.Devices = append(cfg.Devices, d)
	}
	if raw.Sweep.Kind != 0 {
		s := DefaultSweep()
		if err := raw.Sweep.Decode(s); err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
		cfg.Sweep = s
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

type Preset struct {
	Description string
	build       func() *Config
}

var presets = map[string]Preset{
	"pendulum": {
		Description: "single pendulum, 0.5 m from 45°",
		build:       DefaultConfig,
	},
	"small": {
		Description: "small-angle pendulum, 0.4 m from 10°",
		build: func() *Config {
			return pendulumRun(smallSwing())
		},
	},
	"big-swing": {
		Description: "near-inverted pendulum, 0.6 m from 179.9°",
		build: func() *Config {
			return pendulumRun(bigSwing())
		},
	},
	"pendulums": {
		Description: "small and big-swing pendulums side by side",
		build: func() *Config {
			return pendulumRun(smallSwing(), bigSwing())
		},
	},
	"nominal": {
		Description: "one ADC device with default bring-up timing",
		build: func() *Config {
			cfg := deviceRun()
			cfg.Devices = []power.Config{power.DefaultConfig()}
			return cfg
		},
	},
	"bulk": {
		Description: "5 supply steepnesses x 21 ripple phases, shuffled",
		build: func() *Config {
			cfg := deviceRun()
			cfg.Sweep = DefaultSweep()
			return cfg
		},
	},
}

func smallSwing() physics.PendulumConfig {
	p := physics.DefaultPendulumConfig()
	p.Label = "small"
	p.Length = 0.4
	p.InitAngle = 10 * math.Pi / 180
	return p
}

func bigSwing() physics.PendulumConfig {
	p := physics.DefaultPendulumConfig()
	p.Label = "big-swing"
	p.Length = 0.6
	p.InitAngle = 179.9 * math.Pi / 180
	return p
}

func pendulumRun(ps ...physics.PendulumConfig) *Config {
	cfg := DefaultConfig()
	cfg.Pendulums = ps
	return cfg
}

func deviceRun() *Config {
	cfg := DefaultConfig()
	cfg.Pendulums = nil
	cfg.Driver = DriverConfig{FPS: DeviceFPS, SubSteps: DeviceSubSteps}
	return cfg
}

// GetPreset returns a fresh copy of the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, sim.ErrUnknownPreset)
	}
	return p.build(), nil
}

func Describe(name string) string {
	return presets[name].Description
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

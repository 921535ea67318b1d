package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/simlab/internal/config"
	"github.com/san-kum/simlab/internal/physics"
	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

// Factory builds every entity of one kind described by a run config.
type Factory func(cfg *config.Config) ([]sim.Entity, error)

type Registry struct {
	kinds map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{
		kinds: make(map[string]Factory),
	}

	r.kinds[physics.KindPendulum] = func(cfg *config.Config) ([]sim.Entity, error) {
		out := make([]sim.Entity, 0, len(cfg.Pendulums))
		for i, pc := range cfg.Pendulums {
			if pc.Label == "" {
				pc.Label = fmt.Sprintf("pendulum-%d", i)
			}
			p, err := physics.NewPendulum(pc)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}
	r.kinds[power.KindSequencer] = func(cfg *config.Config) ([]sim.Entity, error) {
		out := make([]sim.Entity, 0, len(cfg.Devices))
		for i, dc := range cfg.Devices {
			if dc.Label == "" {
				dc.Label = fmt.Sprintf("device-%d", i)
			}
			s, err := power.NewSequencer(dc)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.kinds[kind] = f
}

// Build constructs the entities of the given kinds, or of every registered
// kind when none are named.
func (r *Registry) Build(cfg *config.Config, kinds ...string) ([]sim.Entity, error) {
	if len(kinds) == 0 {
		kinds = r.ListKinds()
	}
	var out []sim.Entity
	for _, kind := range kinds {
		fn, ok := r.kinds[kind]
		if !ok {
			return nil, fmt.Errorf("%q: %w", kind, sim.ErrUnknownKind)
		}
		es, err := fn(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out = append(out, es...)
	}
	return out, nil
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

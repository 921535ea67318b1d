// Package observability exports driver activity as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the simulation metrics and implements sim.Recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Steps     *prometheus.CounterVec
	Decisions *prometheus.CounterVec
	Entities  *prometheus.GaugeVec
	Frames    prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simlab_steps_total",
		Help: "Integration sub-steps taken, labeled by entity kind.",
	}, []string{"kind"}), "simlab_steps_total")
	if err != nil {
		return nil, err
	}

	decisions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simlab_decisions_total",
		Help: "Latched verdicts, labeled by entity kind and verdict.",
	}, []string{"kind", "verdict"}), "simlab_decisions_total")
	if err != nil {
		return nil, err
	}

	entities, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simlab_entities",
		Help: "Entities owned by the driver, labeled by kind.",
	}, []string{"kind"}), "simlab_entities")
	if err != nil {
		return nil, err
	}

	frames, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simlab_frame_duration_seconds",
		Help:    "Wall time spent stepping one frame.",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}), "simlab_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:  gatherer,
		Steps:     steps,
		Decisions: decisions,
		Entities:  entities,
		Frames:    frames,
	}, nil
}

func (c *Collector) ObserveFrame(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Observe(d.Seconds())
}

func (c *Collector) AddSteps(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.Steps.WithLabelValues(kind).Add(float64(n))
}

func (c *Collector) ObserveVerdict(kind, verdict string) {
	if c == nil {
		return
	}
	c.Decisions.WithLabelValues(kind, verdict).Inc()
}

func (c *Collector) SetEntities(kind string, n int) {
	if c == nil {
		return
	}
	c.Entities.WithLabelValues(kind).Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

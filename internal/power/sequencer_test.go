package power_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/simlab/internal/power"
	"github.com/san-kum/simlab/internal/sim"
)

const dt = 1.0 / 120

func newSequencer(mutate func(*power.Config)) *power.Sequencer {
	cfg := power.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := power.NewSequencer(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func fixedStep() float64 { return dt }

// jitteredSteps draws step sizes between dt/10 and 5dt from a seeded source.
func jitteredSteps(seed int64) func() float64 {
	rng := rand.New(rand.NewSource(seed))
	return func() float64 { return dt * (0.1 + 4.9*rng.Float64()) }
}

func runToHorizon(s *power.Sequencer) int {
	n := 0
	for !s.Done() {
		s.Step(dt)
		n++
		Expect(n).To(BeNumerically("<", 100000), "sequencer never reached its horizon")
	}
	return n
}

var _ = Describe("Sequencer", func() {
	Describe("construction", func() {
		It("records an all-zero initial sample", func() {
			s := newSequencer(nil)
			Expect(s.Times()).To(Equal([]float64{0}))
			Expect(s.Current()).To(Equal([]float64{0, 0, 0}))
			Expect(s.Decision()).To(Equal(power.Undecided))
			Expect(math.IsNaN(s.DecidedAt())).To(BeTrue())
		})

		DescribeTable("rejects invalid parameters",
			func(mutate func(*power.Config)) {
				cfg := power.DefaultConfig()
				mutate(&cfg)
				_, err := power.NewSequencer(cfg)
				Expect(err).To(MatchError(sim.ErrInvalidParam))
			},
			Entry("zero supply max", func(c *power.Config) { c.SupplyMax = 0 }),
			Entry("negative regulator steepness", func(c *power.Config) { c.RegulatorSteepness = -1 }),
			Entry("negative dropout", func(c *power.Config) { c.DropoutMargin = -0.1 }),
			Entry("NaN threshold", func(c *power.Config) { c.Threshold = math.NaN() }),
			Entry("infinite horizon", func(c *power.Config) { c.Horizon = math.Inf(1) }),
		)
	})

	Describe("decision", func() {
		It("passes when the supply reaches 12 V well before the check", func() {
			s := newSequencer(func(c *power.Config) {
				c.SupplySteepness = 100
				c.RippleAmplitude = 0
			})
			runToHorizon(s)
			Expect(s.SupplyVoltage()).To(Equal(12.0))
			Expect(s.RegulatedVoltage()).To(Equal(5.0))
			Expect(s.Decision()).To(Equal(power.Pass))
		})

		It("passes with the default ramp and ripple", func() {
			s := newSequencer(nil)
			runToHorizon(s)
			Expect(s.Decision()).To(Equal(power.Pass))
		})

		It("fails when the regulator never ramps", func() {
			s := newSequencer(func(c *power.Config) {
				c.SupplySteepness = 100
				c.RegulatorSteepness = 0
			})
			runToHorizon(s)
			Expect(s.RegulatedVoltage()).To(BeNumerically("<=", 0))
			Expect(s.Decision()).To(Equal(power.Fail))
		})

		It("fails when the regulated rail sits exactly on the threshold", func() {
			s := newSequencer(func(c *power.Config) {
				c.RegulatorMax = c.Threshold
			})
			runToHorizon(s)
			Expect(s.RegulatedVoltage()).To(Equal(s.Config().Threshold))
			Expect(s.Decision()).To(Equal(power.Fail))
		})

		It("stays undecided before enable plus check delay", func() {
			s := newSequencer(nil)
			for s.Elapsed() < 0.69 {
				s.Step(dt)
			}
			Expect(s.Decision()).To(Equal(power.Undecided))
			v, decided := s.Verdict()
			Expect(v).To(Equal("undecided"))
			Expect(decided).To(BeFalse())
		})

		It("latches once and ignores later changes", func() {
			s := newSequencer(func(c *power.Config) {
				c.Horizon = 5
			})
			for s.Decision() == power.Undecided {
				s.Step(dt)
			}
			first := s.Decision()
			at := s.DecidedAt()
			Expect(at).To(BeNumerically(">=", s.Config().EnableDelay+s.Config().CheckDelay))

			for !s.Done() {
				s.Step(dt)
				Expect(s.Decision()).To(Equal(first))
			}
			Expect(s.DecidedAt()).To(Equal(at))
			v, decided := s.Verdict()
			Expect(v).To(Equal(first.String()))
			Expect(decided).To(BeTrue())
		})
	})

	Describe("clamps", func() {
		DescribeTable("hold at every stepped sample",
			func(mutate func(*power.Config), next func() float64) {
				s := newSequencer(mutate)
				for n := 0; !s.Done(); n++ {
					s.Step(next())
					Expect(n).To(BeNumerically("<", 100000), "sequencer never reached its horizon")
				}
				cfg := s.Config()
				supply := s.Trace(power.ChanSupply)
				reg := s.Trace(power.ChanRegulated)
				en := s.Trace(power.ChanEnable)
				for i := 1; i < len(supply); i++ {
					Expect(supply[i]).To(BeNumerically(">=", 0))
					Expect(supply[i]).To(BeNumerically("<=", cfg.SupplyMax))
					Expect(reg[i]).To(BeNumerically("<=", cfg.RegulatorMax))
					Expect(reg[i]).To(BeNumerically("<=", supply[i]-cfg.DropoutMargin))
					Expect(en[i]).To(Or(Equal(0.0), Equal(cfg.EnableHigh)))
				}
			},
			Entry("defaults", func(*power.Config) {}, fixedStep),
			Entry("steep supply", func(c *power.Config) { c.SupplySteepness = 100 }, fixedStep),
			Entry("large ripple", func(c *power.Config) {
				c.RippleAmplitude = 40
				c.RipplePhase = math.Pi
			}, fixedStep),
			Entry("dead supply", func(c *power.Config) {
				c.SupplySteepness = 0
				c.RippleAmplitude = 0
			}, fixedStep),
			Entry("slow supply, fast regulator", func(c *power.Config) {
				c.SupplySteepness = 3
				c.RegulatorDelay = 0
				c.RegulatorSteepness = 1000
			}, fixedStep),
			Entry("defaults, jittered steps", func(*power.Config) {}, jitteredSteps(1)),
			Entry("large ripple, jittered steps", func(c *power.Config) {
				c.RippleAmplitude = 40
				c.RipplePhase = math.Pi
			}, jitteredSteps(7)),
			Entry("steep regulator, coarse jittered steps", func(c *power.Config) {
				c.RegulatorSteepness = 1000
				c.SupplySteepness = 20
			}, jitteredSteps(42)),
		)

		It("lets the dropout ceiling win when the supply has no headroom", func() {
			s := newSequencer(func(c *power.Config) {
				c.SupplySteepness = 0
				c.RippleAmplitude = 0
			})
			s.Step(dt)
			Expect(s.SupplyVoltage()).To(Equal(0.0))
			Expect(s.RegulatedVoltage()).To(Equal(-0.5))
		})
	})

	Describe("timing", func() {
		It("snaps enable high once the delay has elapsed", func() {
			s := newSequencer(nil)
			for s.Elapsed() < 0.6 {
				Expect(s.EnableSignal()).To(Equal(0.0))
				s.Step(0.05)
			}
			s.Step(0.05)
			Expect(s.EnableSignal()).To(Equal(3.3))
		})

		It("does not ramp the regulator before its delay", func() {
			s := newSequencer(nil)
			for s.Elapsed() < 0.45 {
				s.Step(dt)
				Expect(s.RegulatedVoltage()).To(Equal(math.Min(0, s.SupplyVoltage()-0.5)))
			}
		})

		It("becomes a no-op past the horizon", func() {
			s := newSequencer(nil)
			n := runToHorizon(s)
			Expect(s.Times()).To(HaveLen(n + 1))
			Expect(s.Elapsed()).To(BeNumerically(">", s.Config().Horizon))

			before := s.Current()
			elapsed := s.Elapsed()
			s.Step(dt)
			s.Step(1)
			Expect(s.Times()).To(HaveLen(n + 1))
			Expect(s.Current()).To(Equal(before))
			Expect(s.Elapsed()).To(Equal(elapsed))
		})

		It("grows history by one per step and keeps elapsed in sync", func() {
			s := newSequencer(nil)
			for i := 1; i <= 50; i++ {
				s.Step(dt)
				Expect(s.Times()).To(HaveLen(i + 1))
				Expect(s.Elapsed()).To(BeNumerically("~", float64(i)*dt, 1e-12))
			}
		})

		It("panics on a non-positive step", func() {
			s := newSequencer(nil)
			Expect(func() { s.Step(0) }).To(Panic())
			Expect(func() { s.Step(-dt) }).To(Panic())
			Expect(func() { s.Step(math.NaN()) }).To(Panic())
			Expect(s.Times()).To(HaveLen(1))
		})
	})

	Describe("DelayedPhase", func() {
		It("shifts enable against supply by the check delay", func() {
			s := newSequencer(nil)
			runToHorizon(s)
			supply, enable := s.DelayedPhase()
			times := s.Times()

			k := 0
			for _, t := range times {
				if t < s.Config().CheckDelay {
					k++
				}
			}
			Expect(k).To(BeNumerically(">", 0))
			Expect(supply).To(HaveLen(len(times) - k))
			Expect(enable).To(HaveLen(len(times) - k))
			Expect(supply[0]).To(Equal(s.Trace(power.ChanSupply)[k]))
			Expect(enable[len(enable)-1]).To(Equal(s.Trace(power.ChanEnable)[len(times)-1-k]))
		})

		It("returns the undelayed trace before the check delay", func() {
			s := newSequencer(nil)
			s.Step(dt)
			supply, enable := s.DelayedPhase()
			Expect(supply).To(Equal(s.Trace(power.ChanSupply)))
			Expect(enable).To(Equal(s.Trace(power.ChanEnable)))
		})
	})

	It("exposes its view", func() {
		s := newSequencer(func(c *power.Config) { c.Label = "adc-7" })
		var v sim.View = s
		Expect(v.Label()).To(Equal("adc-7"))
		Expect(v.Kind()).To(Equal(power.KindSequencer))
		Expect(v.Channels()).To(Equal([]string{power.ChanSupply, power.ChanRegulated, power.ChanEnable}))
		Expect(v.Trace("nope")).To(BeNil())
	})
})

var _ = DescribeTable("Decision.String",
	func(d power.Decision, want string) {
		Expect(d.String()).To(Equal(want))
	},
	Entry("undecided", power.Undecided, "undecided"),
	Entry("pass", power.Pass, "pass"),
	Entry("fail", power.Fail, "fail"),
	Entry("out of range", power.Decision(7), "unknown"),
)

// Package analysis post-processes recorded traces.
//
//   - [DominantPeriod]: oscillation period from the strongest spectral bin
//   - [EnergyTrend]: linear drift and spread of an energy trace
//   - [NewPhasePortrait]: paired traces rendered as ASCII
//
// # Example
//
//	period, err := analysis.DominantPeriod(p.Trace(physics.ChanAngle), dt)
//	trend, err := analysis.EnergyTrend(p.Times(), p.EnergyHistory())
package analysis

// Package power models the bring-up of an ADC: a rippled supply rail, a
// delayed linear regulator, a reference enable line, and a one-shot check
// that latches [Pass] or [Fail] once the enable has settled.
//
// [Sequencer] implements [sim.Entity]. All timing gates compare the elapsed
// time before the current step, and once the horizon is passed Step is a
// no-op.
package power

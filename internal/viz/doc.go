// Package viz renders a running [sim.Driver] in the terminal with Bubble Tea.
//
// The [Model] steps one driver frame per tick at the configured frame rate
// and reads entities only through [sim.View]: swinging entities are drawn on
// a braille [Canvas], entities with a verdict are plotted with asciigraph,
// and large groups collapse into a pass/fail summary.
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	N     - Single frame while paused
//	P     - Toggle phase plot
//	T     - Cycle color themes
//	?     - Show help overlay
package viz

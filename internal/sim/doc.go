// Package sim defines the stepping contract shared by every simulated entity
// and the driver that owns entity instances.
//
//   - [Entity]: advanced by Step(dt), read through [View]
//   - [View]: read-only scalars and history traces for renderers
//   - [Driver]: steps each entity a fixed number of sub-steps per frame
//
// # Example
//
//	p, _ := physics.NewPendulum(physics.DefaultPendulumConfig())
//	d, _ := sim.New(sim.Config{FPS: 20, SubSteps: 1}, logging.Noop(), p)
//	_ = d.Run(ctx, 200)
//
// # Thread Safety
//
// An entity is only ever touched by its own Step and read calls. Distinct
// entities share nothing, so a Driver with Parallel set steps them on
// separate goroutines; the Driver itself is NOT safe for concurrent use.
package sim

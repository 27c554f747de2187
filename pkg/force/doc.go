// Package force implements a velocity-Verlet style force simulation for
// laying out circular nodes.
//
// # Overview
//
// A [Simulation] owns a slice of [Node] values and a set of named forces.
// Every tick it lowers a scalar "alpha" (a temperature) toward a target,
// lets each force add velocity contributions scaled by alpha, then damps
// velocities and integrates positions. A layout is stable once alpha has
// decayed below a threshold.
//
// # Forces
//
//   - [Directional]: pulls nodes toward a target coordinate on one axis
//     ([X], [Y], [XFunc], [YFunc]).
//   - [Collide]: keeps circles (radius + padding) from overlapping, using a
//     quadtree to find candidate pairs.
//   - [ManyBody]: global charge between all nodes, approximated with the
//     Barnes–Hut method.
//   - [Links]: springs pulling linked nodes toward a rest distance.
//
// Forces are stored in named slots. Setting a force under an existing name
// replaces it in place, so re-running a layout with new parameters is a
// plain overwrite.
//
// # Driving the simulation
//
// Batch layouts call [Simulation.Converge] and read positions afterwards:
//
//	sim := force.New(nodes, force.WithSeed(42))
//	_ = sim.SetForce("x", force.X(400).Strength(0.05))
//	_ = sim.SetForce("collide", force.NewCollide(force.Radius).Strength(0.8))
//	ticks, err := sim.Converge(0.1)
//
// Frame-driven hosts call [Simulation.Step] once per frame (or use
// [Simulation.Run] with a ticker) and read node positions between frames.
// Setting a non-zero alpha target keeps the layout gently moving, which is
// how a layout re-settles after its forces change:
//
//	_ = sim.SetForce("x", separated)
//	sim.SetAlphaTarget(0.25)
//	sim.Restart()
//
// A Simulation is not safe for concurrent use. It is the only writer of
// node positions and velocities while it ticks.
//
// # Degenerate input
//
// A simulation without nodes never ticks and reports convergence at once.
// Coincident nodes are separated with a tiny pseudo-random offset drawn
// from the simulation's seeded source, so results are reproducible for a
// given seed.
package force

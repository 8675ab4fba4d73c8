// Package layout positions topology graphs for display.
//
// The engine is a force-directed simulation with hierarchical band
// constraints, tuned for the three-level AS/router/interface topology rather
// than general graph drawing. A layout pass runs in three stages:
//
//  1. Seeding ([Seed]): AS containers on a top band (grid when there are
//     many), routers on a circle around their AS in a middle band, interfaces
//     on a circle around their router. Saved positions and locked nodes are
//     kept verbatim.
//  2. Force refinement ([Engine.Run]): pairwise inverse-square repulsion,
//     linear spring attraction along every edge, and an interface-to-router
//     containment spring with a hard distance clamp, integrated with explicit
//     Euler steps under fixed damping. Band constraints are re-applied every
//     iteration.
//  3. Crossing reduction ([Reorder]): routers within each AS and interfaces
//     within each router are re-distributed around their band circle in
//     descending connectivity order, a cheap heuristic against edge
//     crossings.
//
// All tunables live in [Config]; nothing is hard-coded in the force loop.
// Locked nodes act as fixed anchors throughout: they exert forces but are
// never moved, reseeded, or reordered.
//
// The engine is a blocking, synchronous computation. A single Engine must not
// run two passes concurrently; callers that need serialization should hold a
// lock around Run (the pipeline Runner does).
package layout

// Package pkg provides the core libraries for bgpmap topology visualization.
//
// # Overview
//
// bgpmap turns raw BGP topology documents into positioned network maps. The
// pkg directory is organized along the pipeline:
//
//  1. [topology] - Raw document model, CIDR parsing, validation
//  2. [graph] - Derived layered graph (AS, router, interface nodes)
//  3. [layout] - Seeding, force-directed refinement, crossing reduction
//  4. [render] - Layout serialization and Graphviz output
//  5. [state] - View-state stores (file, Redis) and the MongoDB layout archive
//  6. [pipeline] - Orchestration and the edit-event log
//
// # Quick Start
//
// Lay out a topology and export the positioned graph:
//
//	doc, _ := topology.ReadDocumentFile("bgp_graph.json")
//	runner, _ := pipeline.NewRunner(doc, pipeline.Options{})
//	res, _ := runner.Run(ctx, nil)
//	_ = render.WriteLayoutFile(res.Layout, "bgp_graph.layout.json")
//
// # Main Packages
//
// [topology] - The wire format: nodes (autonomous systems and routers with
// interface maps) and edges (router-to-router links named by interface).
// Validation splits problems into fatal structural errors and semantic
// warnings.
//
// [graph] - The transformed graph the engine works on. Interfaces become
// first-class nodes, document edges are retargeted to interface endpoints,
// and hierarchy plus router-shadow edges are synthesized so the force pass
// keeps families together.
//
// [layout] - The three-stage engine: band-constrained initial placement,
// force-directed refinement (inverse-square repulsion, linear springs,
// interface containment), and degree-ordered crossing reduction. All
// tunables live in [layout.Config].
//
// [render] - Positioned node/edge lists as JSON for browser clients, and DOT
// generation with Graphviz SVG/PNG rendering for static output.
//
// [state] - Per-user view state (positions, colors, locked nodes) persisted
// to disk or Redis, and named layout snapshots archived in MongoDB.
//
// [pipeline] - The [pipeline.Runner] used by the CLI and the serve API:
// validate, transform, seed, refine, reorder, plus incremental edits and
// read-only replay of the event log.
//
// [observability] - Hook interfaces the serve command binds to Prometheus;
// library use stays on no-ops.
//
// [topology]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/topology
// [graph]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/graph
// [layout]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/layout
// [render]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/render
// [state]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/state
// [pipeline]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/netscale-tools/bgpmap/pkg/observability
package pkg

// Package pipeline drives the full topology-to-positions flow: validate the
// raw document, derive the layered graph, seed positions, run the
// force-directed engine, and reorder for crossing reduction.
//
// The [Runner] is the single entry point used by the CLI, the serve API, and
// the event TUI. It owns the current document, the applied edit-event log,
// and the derived graph, and it serializes layout passes: the engine is a
// blocking synchronous computation, so a second caller waits for the first
// pass to finish rather than overlapping with it.
//
// # Usage
//
//	doc, err := topology.ReadDocumentFile("bgp_graph.json")
//	if err != nil { ... }
//
//	runner, err := pipeline.NewRunner(doc, pipeline.Options{Logger: logger})
//	if err != nil { ... }
//
//	result, err := runner.Run(ctx, saved)   // full-budget pass
//	...
//	result, err = runner.ApplyEdit(ctx, pipeline.NewRemoveEdge(edgeID))
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/layout"
	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// Options configures a Runner.
type Options struct {
	// Layout carries every engine tunable. The zero value means
	// layout.DefaultConfig, optionally overridden by ConfigPath.
	Layout *layout.Config

	// ConfigPath points to an optional TOML file of layout overrides.
	ConfigPath string

	// Logger receives stage progress and dropped-edge warnings.
	// Defaults to log.Default().
	Logger *log.Logger
}

// ValidateAndSetDefaults applies defaults and loads the optional config
// file. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Layout == nil {
		cfg := layout.DefaultConfig()
		o.Layout = &cfg
	}
	if o.ConfigPath != "" {
		cfg, err := layout.LoadConfigFile(*o.Layout, o.ConfigPath)
		if err != nil {
			return err
		}
		o.Layout = &cfg
		o.ConfigPath = ""
	}
	return nil
}

// Result is the output of one layout pass.
type Result struct {
	// Graph is the derived graph with committed positions. The pointer is
	// shared with the Runner; treat it as read-only between passes.
	Graph *graph.Graph

	// Layout is the serialized positioned node/edge set for rendering
	// surfaces.
	Layout render.Layout

	// Warnings are the semantic anomalies found by validation.
	Warnings []topology.Warning

	// Dropped are the document edges that could not be retargeted.
	Dropped []graph.EdgeDrop

	// Stats carries stage timings and graph sizes.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Iterations    int
	ValidateTime  time.Duration
	TransformTime time.Duration
	LayoutTime    time.Duration
	OrderTime     time.Duration
}

package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/layout"
	"github.com/netscale-tools/bgpmap/pkg/observability"
	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// Runner owns one topology and its edit history, and runs layout passes
// over it. All public methods serialize on an internal mutex: the engine's
// position/velocity table is owned exclusively for the duration of one pass,
// so overlapping invocations wait rather than interleave.
type Runner struct {
	mu sync.Mutex

	cfg    layout.Config
	engine *layout.Engine
	rng    *rand.Rand
	logger *log.Logger

	base   topology.Document // document as loaded, before any events
	doc    topology.Document // document with all events applied
	events []Event

	current *graph.Graph // graph of the last completed pass, may be nil
}

// NewRunner validates opts and prepares a runner for the given document.
// The document itself is validated on the first Run, not here: callers that
// only want validation use topology.Validate directly.
func NewRunner(doc topology.Document, opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cfg := *opts.Layout
	return &Runner{
		cfg:    cfg,
		engine: layout.NewEngine(cfg),
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef)),
		logger: opts.Logger,
		base:   doc,
		doc:    doc,
	}, nil
}

// Config returns the layout configuration the runner was built with.
func (r *Runner) Config() layout.Config { return r.cfg }

// Document returns the current document (base plus all applied events).
func (r *Runner) Document() topology.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc
}

// Events returns the applied edit log, oldest first.
func (r *Runner) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Run executes a full-budget pass over the current document: validate,
// transform, seed, force refinement, crossing reduction. saved carries
// previously persisted positions and lock flags, and may be nil.
func (r *Runner) Run(ctx context.Context, saved map[string]layout.SavedNode) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.pass(ctx, r.doc, saved, r.cfg.FullIterations, true)
	if err != nil {
		return Result{}, err
	}
	r.current = res.Graph
	return res, nil
}

// ApplyEdit appends an edit event, rebuilds the graph, seeds only the new
// nodes (every surviving node keeps its committed position), and runs a
// reduced-budget force pass. The crossing-reduction pass is skipped: a
// single edit should nudge the picture, not reshuffle it.
func (r *Runner) ApplyEdit(ctx context.Context, ev Event) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := applyEvent(r.doc, ev)
	if err != nil {
		return Result{}, err
	}

	res, err := r.pass(ctx, doc, r.carryForward(), r.cfg.RealtimeIterations, false)
	if err != nil {
		return Result{}, err
	}

	r.doc = doc
	r.current = res.Graph
	r.events = append(r.events, ev)
	r.logger.Info("applied edit", "event", ev.String(), "nodes", res.Stats.NodeCount)
	return res, nil
}

// Replay rebuilds the topology from the base document plus the first n
// events of the log and lays it out at the reduced budget. It does not
// change the runner's current document or log; time-traveling is read-only.
func (r *Runner) Replay(ctx context.Context, n int) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 0 || n > len(r.events) {
		return Result{}, fmt.Errorf("replay: %d outside event log [0,%d]", n, len(r.events))
	}

	doc := r.base
	for _, ev := range r.events[:n] {
		var err error
		doc, err = applyEvent(doc, ev)
		if err != nil {
			return Result{}, fmt.Errorf("replay event %s: %w", ev.ID, err)
		}
	}

	return r.pass(ctx, doc, r.carryForward(), r.cfg.RealtimeIterations, false)
}

// carryForward snapshots the committed positions and lock flags of the last
// pass, so surviving nodes keep their place across a rebuild.
func (r *Runner) carryForward() map[string]layout.SavedNode {
	if r.current == nil {
		return nil
	}
	saved := make(map[string]layout.SavedNode, r.current.NodeCount())
	for _, n := range r.current.Nodes() {
		saved[n.ID] = layout.SavedNode{Position: n.Position, Locked: n.Locked}
	}
	return saved
}

// pass runs validate → transform → seed → force → (optionally) reorder.
func (r *Runner) pass(ctx context.Context, doc topology.Document, saved map[string]layout.SavedNode, budget int, reorder bool) (Result, error) {
	var res Result

	start := time.Now()
	warnings, err := topology.Validate(doc)
	res.Stats.ValidateTime = time.Since(start)
	res.Warnings = warnings
	observability.Pipeline().OnValidateComplete(ctx, len(warnings), res.Stats.ValidateTime, err)
	if err != nil {
		return Result{}, fmt.Errorf("validate: %w", err)
	}
	for _, w := range warnings {
		r.logger.Warn("validation", "code", w.Code, "detail", w.Message)
	}

	start = time.Now()
	g, dropped, err := graph.Build(doc)
	res.Stats.TransformTime = time.Since(start)
	var nodes, edges int
	if g != nil {
		nodes, edges = g.NodeCount(), g.EdgeCount()
	}
	observability.Pipeline().OnTransformComplete(ctx, nodes, edges, len(dropped), res.Stats.TransformTime, err)
	if err != nil {
		return Result{}, fmt.Errorf("transform: %w", err)
	}
	res.Dropped = dropped
	for _, d := range dropped {
		r.logger.Warn("transform", "dropped", d.String())
	}

	start = time.Now()
	layout.Seed(g, saved, r.cfg, r.rng)
	observability.Pipeline().OnLayoutStart(ctx, g.NodeCount(), budget)
	r.engine.Run(g, budget)
	res.Stats.LayoutTime = time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, g.NodeCount(), budget, res.Stats.LayoutTime)

	if reorder {
		start = time.Now()
		layout.Reorder(g, r.cfg)
		res.Stats.OrderTime = time.Since(start)
	}

	res.Graph = g
	res.Layout = render.Export(g, r.cfg.Width, r.cfg.Height)
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()
	res.Stats.Iterations = budget

	return res, nil
}

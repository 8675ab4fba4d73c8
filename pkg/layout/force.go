package layout

import (
	"math"

	"github.com/netscale-tools/bgpmap/pkg/graph"
)

// Engine is the force-directed refinement stage. It owns no state between
// runs: every Run builds a fresh position/velocity table from the graph,
// iterates the fixed budget, and commits positions back.
//
// Run is a blocking, synchronous computation and must not be invoked
// concurrently with itself on the same graph.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run refines the positions of all unlocked nodes over the given iteration
// budget. Locked nodes act as fixed anchors: they exert repulsion and hold
// spring endpoints but are never moved. Edges whose endpoints are missing
// from the position table are skipped rather than treated as fatal.
func (e *Engine) Run(g *graph.Graph, iterations int) {
	s := newState(g, e.cfg)
	edges := g.Edges()
	for range iterations {
		e.accumulate(s, edges)
		e.integrate(s)
		e.constrain(s)
	}
	s.commit()
}

// accumulate adds this iteration's forces into each unlocked body's velocity.
func (e *Engine) accumulate(s *state, edges []graph.Edge) {
	// Pairwise repulsion. Interface pairs repel harder so ports spread out
	// instead of bunching along the link between their routers.
	for i := 0; i < len(s.order); i++ {
		a := s.bodies[s.order[i]]
		for j := i + 1; j < len(s.order); j++ {
			b := s.bodies[s.order[j]]

			constant := e.cfg.Repulsion
			if a.node.Kind == graph.KindInterface && b.node.Kind == graph.KindInterface {
				constant = e.cfg.InterfaceRepulsion
			}

			ux, uy, dist := direction(a.pos, b.pos)
			force := constant / (dist * dist)

			if !a.locked {
				a.vx -= ux * force
				a.vy -= uy * force
			}
			if !b.locked {
				b.vx += ux * force
				b.vy += uy * force
			}
		}
	}

	// Linear spring attraction along every edge, real or synthesized.
	for _, edge := range edges {
		src, okS := s.bodies[edge.Source]
		dst, okD := s.bodies[edge.Target]
		if !okS || !okD {
			continue
		}
		e.spring(src, dst, e.cfg.Attraction)
	}

	// Containment spring from each interface toward its router, independent
	// of any topology edge.
	for _, id := range s.order {
		b := s.bodies[id]
		if b.node.Kind != graph.KindInterface {
			continue
		}
		router, ok := s.bodies[b.node.Router]
		if !ok {
			continue
		}
		e.spring(b, router, e.cfg.Containment)
	}
}

// spring pulls two bodies together with force constant*distance.
func (e *Engine) spring(a, b *body, constant float64) {
	ux, uy, dist := direction(a.pos, b.pos)
	force := constant * dist
	if !a.locked {
		a.vx += ux * force
		a.vy += uy * force
	}
	if !b.locked {
		b.vx -= ux * force
		b.vy -= uy * force
	}
}

// integrate applies one explicit Euler step with fixed damping. This is not
// a physically exact solver; stability comes from the damping factor and the
// band constraints re-applied each iteration.
func (e *Engine) integrate(s *state) {
	for _, id := range s.order {
		b := s.bodies[id]
		if b.locked {
			continue
		}
		b.pos.X += b.vx * e.cfg.Damping
		b.pos.Y += b.vy * e.cfg.Damping
		b.vx *= e.cfg.Damping
		b.vy *= e.cfg.Damping
	}
}

// constrain enforces the per-kind band constraints. These are hard clamps
// applied every iteration; enforcing them only at the end leaves the
// simulation free to drift and makes convergence unstable.
func (e *Engine) constrain(s *state) {
	top, bottom := e.cfg.routerBandY()

	for _, id := range s.order {
		b := s.bodies[id]
		if b.locked {
			continue
		}
		switch b.node.Kind {
		case graph.KindAS:
			b.pos.Y = e.cfg.asBandY()
		case graph.KindRouter:
			b.pos.Y = clamp(b.pos.Y, top, bottom)
		case graph.KindInterface:
			router, ok := s.bodies[b.node.Router]
			if !ok {
				continue
			}
			e.clampToRouter(b, router)
		}
	}
}

// clampToRouter pulls an interface back onto the containment bound when it
// has drifted past MaxInterfaceDist, along the router-to-interface direction.
func (e *Engine) clampToRouter(iface, router *body) {
	dx := iface.pos.X - router.pos.X
	dy := iface.pos.Y - router.pos.Y
	dist := math.Hypot(dx, dy)
	if dist <= e.cfg.MaxInterfaceDist || dist == 0 {
		return
	}
	scale := e.cfg.MaxInterfaceDist / dist
	iface.pos.X = router.pos.X + dx*scale
	iface.pos.Y = router.pos.Y + dy*scale
}

// direction returns the unit vector from a to b and their distance, floored
// at 1 unit to avoid division blow-up when nodes coincide. Two coincident
// nodes separate along the x axis.
func direction(a, b graph.Position) (ux, uy, dist float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 1, 0, 1
	}
	if d < 1 {
		return dx / d, dy / d, 1
	}
	return dx / d, dy / d, d
}

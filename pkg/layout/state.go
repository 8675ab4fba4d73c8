package layout

import "github.com/netscale-tools/bgpmap/pkg/graph"

// body is one entry of the per-run position/velocity table.
type body struct {
	node   *graph.Node
	pos    graph.Position
	vx, vy float64
	locked bool
}

// state is the ephemeral table the engine owns for the duration of one run.
// It is built fresh from the graph at the start of a pass and discarded after
// commit; only positions and lock flags survive on the nodes themselves.
type state struct {
	bodies map[string]*body
	order  []string
}

// newState snapshots the graph into a fresh force table.
// Locked AS nodes are synthesized here when the config pins AS containers.
func newState(g *graph.Graph, cfg Config) *state {
	s := &state{bodies: make(map[string]*body, g.NodeCount())}
	for _, n := range g.Nodes() {
		locked := n.Locked
		if cfg.ASNodesLocked && n.Kind == graph.KindAS {
			locked = true
		}
		s.bodies[n.ID] = &body{node: n, pos: n.Position, locked: locked}
		s.order = append(s.order, n.ID)
	}
	return s
}

// commit writes refined positions back to the graph's unlocked nodes.
// Locked nodes are untouched by construction: their bodies never move.
func (s *state) commit() {
	for _, id := range s.order {
		b := s.bodies[id]
		if b.locked {
			continue
		}
		b.node.Position = b.pos
	}
}

package layout

import (
	"math"
	"sort"

	"github.com/netscale-tools/bgpmap/pkg/graph"
)

// Reorder is the crossing-reduction pass run after force convergence.
//
// Within each AS, routers are sorted by descending connectivity degree
// (topology plus router-shadow edges) and redistributed evenly around the
// AS on the router band; within each router, interfaces are treated the same
// way on the interface circle. Equal degrees keep their original insertion
// order, so the pass is deterministic for a given document.
//
// This only reorders nodes within the radial band they already occupy; it is
// a heuristic, not a crossing minimizer. Locked nodes are skipped: they keep
// their position and are not counted as occupying a slot.
func Reorder(g *graph.Graph, cfg Config) {
	top, bottom := cfg.routerBandY()
	centerY := (top + bottom) / 2

	for _, as := range g.NodesOfKind(graph.KindAS) {
		routers := unlocked(g.RoutersOf(as.ID))
		byDegreeDesc(g, routers)
		for i, r := range routers {
			angle := slotAngle(i, len(routers))
			r.Position = graph.Position{
				X: as.Position.X + cfg.RouterRadius*math.Cos(angle),
				Y: clamp(centerY+cfg.RouterRadius*math.Sin(angle), top, bottom),
			}
		}
	}

	for _, router := range g.NodesOfKind(graph.KindRouter) {
		ifaces := unlocked(g.InterfacesOf(router.ID))
		byDegreeDesc(g, ifaces)

		radius := cfg.InterfaceRadius
		if extra := len(ifaces) - 4; extra > 0 {
			radius += cfg.InterfaceRadiusStep * float64(extra)
		}
		radius = math.Min(radius, cfg.MaxInterfaceDist)

		for i, iface := range ifaces {
			angle := slotAngle(i, len(ifaces))
			iface.Position = graph.Position{
				X: router.Position.X + radius*math.Cos(angle),
				Y: router.Position.Y + radius*math.Sin(angle),
			}
		}
	}
}

// unlocked filters out locked nodes, preserving order.
func unlocked(nodes []*graph.Node) []*graph.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !n.Locked {
			out = append(out, n)
		}
	}
	return out
}

// byDegreeDesc sorts nodes by descending degree, stable by insertion order.
func byDegreeDesc(g *graph.Graph, nodes []*graph.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return g.Degree(nodes[i].ID) > g.Degree(nodes[j].ID)
	})
}

// slotAngle spreads n slots evenly over the circle, starting at the top.
func slotAngle(i, n int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
}

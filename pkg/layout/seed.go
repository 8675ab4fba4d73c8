package layout

import (
	"math"
	"math/rand/v2"

	"github.com/netscale-tools/bgpmap/pkg/graph"
)

// SavedNode is a previously persisted position and lock flag for one node,
// keyed by node id in the map handed to [Seed]. Saved nodes keep their exact
// position and are excluded from re-seeding.
type SavedNode struct {
	Position graph.Position
	Locked   bool
}

// Seed assigns a starting position to every node in the graph:
//
//   - AS nodes on a horizontal row at the configured fractional height, or on
//     a grid once the AS count exceeds Config.ASGridThreshold. Order is the
//     document's first-appearance order, which keeps seeding stable across
//     runs of the same document.
//   - Routers on a circle of Config.RouterRadius around their AS, centered
//     vertically in the router band, with a per-AS angular offset drawn from
//     rng on every call.
//   - Interfaces on a circle around their router whose radius grows with the
//     interface count.
//
// Nodes present in saved keep that exact position and lock flag. Locked nodes
// are never re-seeded. Any position that is still NaN or infinite afterwards
// is normalized to the origin, because the force math divides by distance.
func Seed(g *graph.Graph, saved map[string]SavedNode, cfg Config, rng *rand.Rand) {
	for _, n := range g.Nodes() {
		if sp, ok := saved[n.ID]; ok {
			n.Position = sp.Position
			n.Locked = sp.Locked
		}
	}

	seedAS(g, saved, cfg)
	seedRouters(g, saved, cfg, rng)
	seedInterfaces(g, saved, cfg, rng)

	for _, n := range g.Nodes() {
		if !n.Position.IsFinite() {
			n.Position = graph.Position{}
		}
	}
}

// skipSeed reports whether a node must keep its current position.
func skipSeed(n *graph.Node, saved map[string]SavedNode) bool {
	if n.Locked {
		return true
	}
	_, ok := saved[n.ID]
	return ok
}

func seedAS(g *graph.Graph, saved map[string]SavedNode, cfg Config) {
	ases := g.NodesOfKind(graph.KindAS)
	if len(ases) == 0 {
		return
	}

	cols := len(ases)
	if cols > cfg.ASGridThreshold {
		cols = int(math.Ceil(math.Sqrt(float64(len(ases)))))
	}
	// Grid rows stack below the AS band at half the band height per row.
	rowStep := cfg.asBandY() / 2

	xStep := cfg.Width / float64(cols+1)
	for i, n := range ases {
		if skipSeed(n, saved) {
			continue
		}
		col, row := i%cols, i/cols
		n.Position = graph.Position{
			X: xStep * float64(col+1),
			Y: cfg.asBandY() + rowStep*float64(row),
		}
	}
}

func seedRouters(g *graph.Graph, saved map[string]SavedNode, cfg Config, rng *rand.Rand) {
	top, bottom := cfg.routerBandY()
	centerY := (top + bottom) / 2

	for _, as := range g.NodesOfKind(graph.KindAS) {
		routers := g.RoutersOf(as.ID)
		if len(routers) == 0 {
			continue
		}
		offset := rng.Float64() * 2 * math.Pi
		step := 2 * math.Pi / float64(len(routers))

		for i, r := range routers {
			if skipSeed(r, saved) {
				continue
			}
			angle := offset + step*float64(i)
			r.Position = graph.Position{
				X: as.Position.X + cfg.RouterRadius*math.Cos(angle),
				Y: clamp(centerY+cfg.RouterRadius*math.Sin(angle), top, bottom),
			}
		}
	}

	// Orphan routers whose parent is missing still need finite coordinates.
	for _, r := range g.NodesOfKind(graph.KindRouter) {
		if skipSeed(r, saved) {
			continue
		}
		if _, ok := g.Node(r.Parent); !ok {
			r.Position = graph.Position{X: cfg.Width / 2, Y: centerY}
		}
	}
}

func seedInterfaces(g *graph.Graph, saved map[string]SavedNode, cfg Config, rng *rand.Rand) {
	for _, router := range g.NodesOfKind(graph.KindRouter) {
		ifaces := g.InterfacesOf(router.ID)
		if len(ifaces) == 0 {
			continue
		}

		radius := cfg.InterfaceRadius
		if extra := len(ifaces) - 4; extra > 0 {
			radius += cfg.InterfaceRadiusStep * float64(extra)
		}
		radius = math.Min(radius, cfg.MaxInterfaceDist)

		offset := rng.Float64() * 2 * math.Pi
		step := 2 * math.Pi / float64(len(ifaces))

		for i, iface := range ifaces {
			if skipSeed(iface, saved) {
				continue
			}
			angle := offset + step*float64(i)
			iface.Position = graph.Position{
				X: router.Position.X + radius*math.Cos(angle),
				Y: router.Position.Y + radius*math.Sin(angle),
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

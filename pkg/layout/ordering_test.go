package layout

import (
	"math"
	"testing"

	"github.com/netscale-tools/bgpmap/pkg/graph"
)

func TestReorderPlacesHighestDegreeFirst(t *testing.T) {
	cfg := DefaultConfig()
	g := exampleGraph(t)
	Seed(g, nil, cfg, newRNG(cfg))

	Reorder(g, cfg)

	// Within AS200, R2 (degree 6) outranks R3 (degree 4) and takes the first
	// slot: the top of the circle around the AS.
	as, _ := g.Node("AS200")
	r2, _ := g.Node("R2")

	top, bottom := cfg.routerBandY()
	centerY := (top + bottom) / 2
	wantX := as.Position.X + cfg.RouterRadius*math.Cos(-math.Pi/2)
	wantY := clamp(centerY+cfg.RouterRadius*math.Sin(-math.Pi/2), top, bottom)

	if math.Abs(r2.Position.X-wantX) > 1e-9 || math.Abs(r2.Position.Y-wantY) > 1e-9 {
		t.Errorf("R2 = %v, want first slot (%v, %v)", r2.Position, wantX, wantY)
	}
}

func TestReorderStableForEqualDegrees(t *testing.T) {
	cfg := DefaultConfig()

	run := func() map[string]graph.Position {
		g := exampleGraph(t)
		Seed(g, nil, cfg, newRNG(cfg))
		Reorder(g, cfg)

		out := make(map[string]graph.Position)
		for _, r := range g.RoutersOf("AS200") {
			out[r.ID] = r.Position
		}
		return out
	}

	first := run()
	second := run()
	for id, pos := range first {
		if second[id] != pos {
			t.Fatalf("router %s placed at %v and %v across identical runs", id, pos, second[id])
		}
	}
}

func TestReorderSkipsLockedNodes(t *testing.T) {
	cfg := DefaultConfig()
	g := exampleGraph(t)
	Seed(g, nil, cfg, newRNG(cfg))

	locked, _ := g.Node("R3")
	locked.Locked = true
	locked.Position = graph.Position{X: 10, Y: 20}

	Reorder(g, cfg)

	if locked.Position != (graph.Position{X: 10, Y: 20}) {
		t.Errorf("locked R3 moved to %v during reorder", locked.Position)
	}
}

func TestReorderKeepsInterfacesOnCircle(t *testing.T) {
	cfg := DefaultConfig()
	g := exampleGraph(t)
	Seed(g, nil, cfg, newRNG(cfg))
	NewEngine(cfg).Run(g, cfg.RealtimeIterations)

	Reorder(g, cfg)

	for _, router := range g.NodesOfKind(graph.KindRouter) {
		ifaces := g.InterfacesOf(router.ID)
		for _, iface := range ifaces {
			dist := math.Hypot(iface.Position.X-router.Position.X, iface.Position.Y-router.Position.Y)
			if dist > cfg.MaxInterfaceDist+1e-9 {
				t.Errorf("interface %s at %v from router after reorder, max %v", iface.ID, dist, cfg.MaxInterfaceDist)
			}
		}
	}
}

func TestSlotAngleSpreadsEvenly(t *testing.T) {
	n := 4
	for i := 0; i < n; i++ {
		got := slotAngle(i, n)
		want := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		if got != want {
			t.Errorf("slotAngle(%d, %d) = %v, want %v", i, n, got, want)
		}
	}

	// The example topology: reordered interfaces of R3 sit at distinct angles.
	g := exampleGraph(t)
	cfg := DefaultConfig()
	Seed(g, nil, cfg, newRNG(cfg))
	Reorder(g, cfg)

	seen := map[graph.Position]bool{}
	for _, iface := range g.InterfacesOf("R3") {
		if seen[iface.Position] {
			t.Errorf("interfaces of R3 share position %v", iface.Position)
		}
		seen[iface.Position] = true
	}
}

func TestReorderOrdersInterfacesByDegree(t *testing.T) {
	cfg := DefaultConfig()
	g := graph.New()

	add := func(n graph.Node) {
		t.Helper()
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	add(graph.Node{ID: "AS1", Kind: graph.KindAS})
	add(graph.Node{ID: "RA", Kind: graph.KindRouter, Parent: "AS1"})
	add(graph.Node{ID: "RB", Kind: graph.KindRouter, Parent: "AS1"})
	add(graph.Node{ID: "RA_eth0", Kind: graph.KindInterface, Router: "RA"})
	add(graph.Node{ID: "RA_eth1", Kind: graph.KindInterface, Router: "RA"})
	for i := 0; i < 5; i++ {
		add(graph.Node{ID: "RB_eth" + string(rune('0'+i)), Kind: graph.KindInterface, Router: "RB"})
	}

	// eth1 carries five links, eth0 one.
	for i := 0; i < 5; i++ {
		peer := "RB_eth" + string(rune('0'+i))
		if err := g.AddEdge(graph.Edge{Source: "RA_eth1", Target: peer, Kind: graph.EdgeTopology}); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	if err := g.AddEdge(graph.Edge{Source: "RA_eth0", Target: "RB_eth0", Kind: graph.EdgeTopology}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	Seed(g, nil, cfg, newRNG(cfg))
	Reorder(g, cfg)

	// The busier interface takes the first slot, directly above its router.
	ra, _ := g.Node("RA")
	eth0, _ := g.Node("RA_eth0")
	eth1, _ := g.Node("RA_eth1")
	if !(eth1.Position.Y < ra.Position.Y) {
		t.Errorf("RA_eth1 at %v, want above router %v", eth1.Position, ra.Position)
	}
	if !(eth0.Position.Y > ra.Position.Y) {
		t.Errorf("RA_eth0 at %v, want below router %v", eth0.Position, ra.Position)
	}
}

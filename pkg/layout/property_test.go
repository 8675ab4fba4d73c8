package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// buildStarGraph assembles one AS with routerCount routers, ifaceCounts[i]
// interfaces each, and a chain of links between consecutive routers.
func buildStarGraph(routerCount int, ifaceCounts []int) (*graph.Graph, error) {
	b := topology.NewBuilder()
	b.AddAS("AS1", "AS 1")
	for i := 0; i < routerCount; i++ {
		b.AddRouter(fmt.Sprintf("R%d", i), fmt.Sprintf("R%d", i), "AS1")
	}
	for i := 1; i < routerCount; i++ {
		src := fmt.Sprintf("R%d", i-1)
		dst := fmt.Sprintf("R%d", i)
		b.AddLink(src, dst, fmt.Sprintf("10.0.%d.1/30", i), fmt.Sprintf("10.0.%d.2/30", i))
	}
	// Extra unlinked interfaces on top of the chain ports.
	doc := b.Document()
	for i := 0; i < routerCount && i < len(ifaceCounts); i++ {
		for j := 0; j < ifaceCounts[i]; j++ {
			name := fmt.Sprintf("lo%d", j)
			doc.Nodes[i+1].Data.Interfaces[name] = fmt.Sprintf("10.%d.%d.1/32", i+1, j)
		}
	}
	g, _, err := graph.Build(doc)
	return g, err
}

// TestLayoutInvariants uses property-based testing to verify that the band
// and containment constraints hold for arbitrary topology shapes, not just
// the reference document.
func TestLayoutInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("interfaces stay within the containment bound", prop.ForAll(
		func(routerCount int, ifaceCounts []int) bool {
			g, err := buildStarGraph(routerCount, ifaceCounts)
			if err != nil {
				return false
			}

			cfg := DefaultConfig()
			Seed(g, nil, cfg, newRNG(cfg))
			NewEngine(cfg).Run(g, cfg.RealtimeIterations)

			for _, n := range g.NodesOfKind(graph.KindInterface) {
				router, ok := g.Node(n.Router)
				if !ok {
					continue
				}
				dist := math.Hypot(n.Position.X-router.Position.X, n.Position.Y-router.Position.Y)
				if dist > cfg.MaxInterfaceDist+1e-9 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 6),
		gen.SliceOfN(6, gen.IntRange(0, 8)),
	))

	properties.Property("every node ends at finite coordinates", prop.ForAll(
		func(routerCount int, ifaceCounts []int) bool {
			g, err := buildStarGraph(routerCount, ifaceCounts)
			if err != nil {
				return false
			}

			cfg := DefaultConfig()
			Seed(g, nil, cfg, newRNG(cfg))
			NewEngine(cfg).Run(g, cfg.RealtimeIterations)

			for _, n := range g.Nodes() {
				if !n.Position.IsFinite() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 6),
		gen.SliceOfN(6, gen.IntRange(0, 8)),
	))

	properties.TestingRun(t)
}

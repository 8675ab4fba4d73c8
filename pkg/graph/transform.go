package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// ErrInterfaceIDCollision is returned by ExpandInterfaces when the id formed
// from a router id and interface name is already taken by another node.
var ErrInterfaceIDCollision = errors.New("interface node id collision")

// Default display colors by node kind, matching the reference renderer.
const (
	ColorAS        = "#ddd"
	ColorRouter    = "#00FF00"
	ColorInterface = "#FFA500"
)

// InterfaceID forms the deterministic node id for a named interface.
func InterfaceID(routerID, name string) string {
	return routerID + "_" + name
}

// EdgeDrop records a document edge that could not be retargeted onto
// interface nodes and was therefore excluded from the graph.
type EdgeDrop struct {
	Source string
	Target string
	Reason string
}

// String implements fmt.Stringer.
func (d EdgeDrop) String() string {
	return fmt.Sprintf("edge %s-%s dropped: %s", d.Source, d.Target, d.Reason)
}

// Build derives the full layout graph from a validated document: AS and
// router nodes, expanded interface nodes, retargeted topology edges, and
// synthesized hierarchy and router-shadow edges.
//
// Dropped edges (unresolvable interface, self-loop after resolution) are
// returned for reporting; the rest of the graph still builds. The only error
// conditions are id collisions, which validation cannot see because interface
// ids are formed here.
func Build(doc topology.Document) (*Graph, []EdgeDrop, error) {
	g := New()

	for _, dn := range doc.Nodes {
		n := Node{ID: dn.Data.ID, Label: dn.Data.Label}
		if n.Label == "" {
			n.Label = n.ID
		}
		if dn.Data.Parent == "" {
			n.Kind = KindAS
			n.Color = ColorAS
		} else {
			n.Kind = KindRouter
			n.Parent = dn.Data.Parent
			n.Color = ColorRouter
		}
		if err := g.AddNode(n); err != nil {
			return nil, nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}

	interfaces, err := ExpandInterfaces(doc.Nodes)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range interfaces {
		if err := g.AddNode(n); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrInterfaceIDCollision, n.ID)
		}
	}

	topo, dropped := RetargetEdges(doc.Edges, g)
	for _, e := range topo {
		if err := g.AddEdge(e); err != nil {
			return nil, nil, fmt.Errorf("add edge %s: %w", e.ID, err)
		}
	}

	if err := SynthesizeHierarchy(g); err != nil {
		return nil, nil, err
	}

	return g, dropped, nil
}

// ExpandInterfaces emits one interface node per entry of every router's
// interface map, with ids formed by [InterfaceID]. Names are visited in
// sorted order so the result is deterministic. A collision between two
// formed ids is a fatal error.
func ExpandInterfaces(nodes []topology.DocumentNode) ([]Node, error) {
	var out []Node
	seen := make(map[string]bool)

	for _, dn := range nodes {
		if len(dn.Data.Interfaces) == 0 {
			continue
		}
		routerID := dn.Data.ID
		for _, name := range slices.Sorted(maps.Keys(dn.Data.Interfaces)) {
			id := InterfaceID(routerID, name)
			if seen[id] {
				return nil, fmt.Errorf("%w: %s", ErrInterfaceIDCollision, id)
			}
			seen[id] = true
			out = append(out, Node{
				ID:     id,
				Kind:   KindInterface,
				Router: routerID,
				Label:  name,
				IP:     dn.Data.Interfaces[name],
				Color:  ColorInterface,
			})
		}
	}
	return out, nil
}

// RetargetEdges rewrites the document's router-to-router edges onto the
// interface node ids formed during expansion. Edges whose resolved interface
// node is missing are dropped with a reason; edges that resolve to a
// self-loop are dropped as well.
func RetargetEdges(edges []topology.DocumentEdge, g *Graph) ([]Edge, []EdgeDrop) {
	var out []Edge
	var dropped []EdgeDrop

	for _, de := range edges {
		data := de.Data
		srcID := InterfaceID(data.Source, data.SourceInterface)
		dstID := InterfaceID(data.Target, data.TargetInterface)

		if _, ok := g.Node(srcID); !ok {
			dropped = append(dropped, EdgeDrop{data.Source, data.Target,
				fmt.Sprintf("interface node %s not found", srcID)})
			continue
		}
		if _, ok := g.Node(dstID); !ok {
			dropped = append(dropped, EdgeDrop{data.Source, data.Target,
				fmt.Sprintf("interface node %s not found", dstID)})
			continue
		}
		if srcID == dstID {
			dropped = append(dropped, EdgeDrop{data.Source, data.Target, "self-loop"})
			continue
		}

		out = append(out, Edge{
			ID:     srcID + "--" + dstID,
			Source: srcID,
			Target: dstID,
			Kind:   EdgeTopology,
			Weight: data.Weight,
		})
	}
	return out, dropped
}

// SynthesizeHierarchy appends the structural edges derived from containment:
// one Hierarchy edge per (AS, router) pair, one per (router, interface) pair,
// and one deduplicated RouterShadow edge per unordered pair of routers that
// share at least one topology edge between their interfaces.
func SynthesizeHierarchy(g *Graph) error {
	for _, n := range g.Nodes() {
		anchor := n.Anchor()
		if anchor == "" {
			continue
		}
		if _, ok := g.Node(anchor); !ok {
			continue
		}
		e := Edge{
			ID:     "h--" + anchor + "--" + n.ID,
			Source: anchor,
			Target: n.ID,
			Kind:   EdgeHierarchy,
		}
		if err := g.AddEdge(e); err != nil {
			return err
		}
	}

	shadows := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.Kind != EdgeTopology {
			continue
		}
		src, okS := g.Node(e.Source)
		dst, okD := g.Node(e.Target)
		if !okS || !okD || src.Router == "" || dst.Router == "" || src.Router == dst.Router {
			continue
		}
		a, b := src.Router, dst.Router
		if a > b {
			a, b = b, a
		}
		key := a + "--" + b
		if shadows[key] {
			continue
		}
		shadows[key] = true
		if err := g.AddEdge(Edge{
			ID:     "s--" + key,
			Source: a,
			Target: b,
			Kind:   EdgeRouterShadow,
		}); err != nil {
			return err
		}
	}
	return nil
}

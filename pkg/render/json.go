package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// Node is one positioned node as handed to a rendering surface.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Kind   string  `json:"kind" bson:"kind"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty"`
	Router string  `json:"router,omitempty" bson:"router,omitempty"`
	Label  string  `json:"label" bson:"label"`
	IP     string  `json:"ip,omitempty" bson:"ip,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Color  string  `json:"color,omitempty" bson:"color,omitempty"`
	Locked bool    `json:"locked,omitempty" bson:"locked,omitempty"`
}

// Edge is one typed edge as handed to a rendering surface.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Kind   string `json:"kind" bson:"kind"`
	Weight string `json:"weight,omitempty" bson:"weight,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
}

// Layout is the complete serialized result of a layout pass.
type Layout struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
}

// Export converts a laid-out graph to its serialization format. Node and
// edge order follows graph insertion order, so output is deterministic for a
// given document.
func Export(g *graph.Graph, width, height float64) Layout {
	out := Layout{Width: width, Height: height}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:     n.ID,
			Kind:   n.Kind.String(),
			Parent: n.Parent,
			Router: n.Router,
			Label:  n.Label,
			IP:     n.IP,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Color:  n.Color,
			Locked: n.Locked,
		})
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Kind:   e.Kind.String(),
			Weight: e.Weight,
			Label:  edgeLabel(g, e),
		})
	}

	return out
}

// edgeLabel builds the "subnet (.a, .b)" display label for topology edges.
func edgeLabel(g *graph.Graph, e graph.Edge) string {
	if e.Kind != graph.EdgeTopology || e.Weight == "" {
		return ""
	}
	src, okS := g.Node(e.Source)
	dst, okD := g.Node(e.Target)
	if !okS || !okD || src.IP == "" || dst.IP == "" {
		return e.Weight
	}
	return fmt.Sprintf("%s (.%d, .%d)", e.Weight, topology.HostNumber(src.IP), topology.HostNumber(dst.IP))
}

// WriteLayout writes a layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// WriteLayoutFile writes a layout to a JSON file with 0644 permissions.
func WriteLayoutFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, f)
}

// ReadLayoutFile reads a serialized layout back from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return l, nil
}

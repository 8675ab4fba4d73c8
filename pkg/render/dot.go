package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/netscale-tools/bgpmap/pkg/graph"
)

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Pinned emits computed positions as pos="x,y!" attributes, which the
	// neato engine honors exactly. Without it, Graphviz lays the graph out
	// itself and only the cluster structure is kept.
	Pinned bool
}

// ToDOT converts a laid-out graph to Graphviz DOT. Each AS becomes a cluster
// holding its routers; interface nodes are drawn as small ellipses next to
// their router; topology edges carry the subnet label. Hierarchy and
// router-shadow edges are omitted: clusters already express containment.
func ToDOT(g *graph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph bgp {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12];\n")
	buf.WriteString("\n")

	for _, as := range g.NodesOfKind(graph.KindAS) {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", as.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", as.Label)
		buf.WriteString("    style=dashed;\n")
		for _, r := range g.RoutersOf(as.ID) {
			writeNode(&buf, r, opts)
			for _, iface := range g.InterfacesOf(r.ID) {
				writeNode(&buf, iface, opts)
			}
		}
		buf.WriteString("  }\n")
	}

	// Routers whose AS is missing still render, outside any cluster.
	for _, r := range g.NodesOfKind(graph.KindRouter) {
		if _, ok := g.Node(r.Parent); ok {
			continue
		}
		writeNode(&buf, r, opts)
		for _, iface := range g.InterfacesOf(r.ID) {
			writeNode(&buf, iface, opts)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		switch e.Kind {
		case graph.EdgeTopology:
			label := edgeLabel(g, e)
			fmt.Fprintf(&buf, "  %q -- %q [label=%q, penwidth=2];\n", e.Source, e.Target, label)
		case graph.EdgeHierarchy:
			if src, ok := g.Node(e.Source); ok && src.Kind == graph.KindRouter {
				fmt.Fprintf(&buf, "  %q -- %q [style=dotted];\n", e.Source, e.Target)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *graph.Node, opts DOTOptions) {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n)),
		fmt.Sprintf("fillcolor=%q", n.Color),
		"style=filled",
	}
	if n.Kind == graph.KindInterface {
		attrs = append(attrs, "shape=ellipse", "fontsize=10", "width=0.5", "height=0.35")
	} else {
		attrs = append(attrs, "shape=ellipse", "width=0.9", "height=0.9")
	}
	if opts.Pinned {
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Position.X, -n.Position.Y))
	}
	fmt.Fprintf(buf, "    %q [%s];\n", n.ID, strings.Join(attrs, ", "))
}

func nodeLabel(n *graph.Node) string {
	if n.Kind == graph.KindInterface && n.IP != "" {
		return n.Label + "\n" + n.IP
	}
	return n.Label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

package graph

import (
	"errors"
	"math"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. IDs are unique across all three node kinds.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Kind distinguishes the three node levels of the topology hierarchy.
type Kind int

const (
	// KindAS is a top-level autonomous-system container.
	KindAS Kind = iota
	// KindRouter is a router owned by an AS.
	KindRouter
	// KindInterface is an IP-addressed port on a router.
	KindInterface
)

// String returns the lowercase kind name used in serialized output.
func (k Kind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindInterface:
		return "interface"
	default:
		return "as"
	}
}

// EdgeKind distinguishes real links from the structural edges synthesized
// during transformation.
type EdgeKind int

const (
	// EdgeTopology is a real link between two interface nodes, carrying the
	// subnet as Weight.
	EdgeTopology EdgeKind = iota
	// EdgeHierarchy is a containment link (AS→Router or Router→Interface),
	// invisible in rendering.
	EdgeHierarchy
	// EdgeRouterShadow is a derived invisible link between two routers whose
	// interfaces are linked. At most one exists per unordered router pair.
	EdgeRouterShadow
)

// String returns the lowercase edge-kind name used in serialized output.
func (k EdgeKind) String() string {
	switch k {
	case EdgeHierarchy:
		return "hierarchy"
	case EdgeRouterShadow:
		return "router-shadow"
	default:
		return "topology"
	}
}

// Position is a 2-D layout coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// IsFinite reports whether both coordinates are real numbers. Seeding
// normalizes non-finite positions to the origin because the force math
// divides by inter-node distance.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Node is one vertex of the derived topology graph.
//
// Parent is the owning AS for routers; Router is the owning router for
// interfaces; both are empty otherwise. Position is mutable layout output.
// Locked nodes keep their position verbatim: they are excluded from seeding,
// force updates, and reordering, but still exert forces as fixed anchors.
type Node struct {
	ID     string
	Kind   Kind
	Parent string // AS id, set for routers
	Router string // router id, set for interfaces
	Label  string
	IP     string // "a.b.c.d/p", set for interfaces
	Color  string

	Position Position
	Locked   bool
}

// Anchor returns the id of the node this one is contained by: the owning
// router for interfaces, the owning AS for routers, "" for AS nodes.
func (n *Node) Anchor() string {
	switch n.Kind {
	case KindInterface:
		return n.Router
	case KindRouter:
		return n.Parent
	default:
		return ""
	}
}

// Edge is one typed edge of the derived graph. ID is stable and derived from
// the endpoints, so incremental edit events can address edges by id.
type Edge struct {
	ID     string
	Source string
	Target string
	Kind   EdgeKind
	Weight string // subnet CIDR, set for topology edges
}

// Graph is the derived node/edge set handed to the layout engine.
//
// Node iteration order is insertion order, which keeps seeding and
// crossing-reduction deterministic for a given document. Graph is not safe
// for concurrent use without external synchronization.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds a node. Returns ErrInvalidNodeID for an empty id or
// ErrDuplicateNodeID when the id is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds an edge between two existing nodes.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	return nil
}

// Node returns the node with the given id and true, or nil and false.
// The pointer refers to the live node: position and lock updates stick.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The slice is fresh; the node pointers are live.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodesOfKind returns all nodes of one kind in insertion order.
func (g *Graph) NodesOfKind(k Kind) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// RoutersOf returns the routers owned by an AS, in insertion order.
func (g *Graph) RoutersOf(asID string) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == KindRouter && n.Parent == asID {
			out = append(out, n)
		}
	}
	return out
}

// InterfacesOf returns the interface nodes owned by a router, in insertion
// order.
func (g *Graph) InterfacesOf(routerID string) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == KindInterface && n.Router == routerID {
			out = append(out, n)
		}
	}
	return out
}

// Degree returns the number of Topology and RouterShadow edges touching the
// node, directly or through its interfaces. Hierarchy edges never count:
// they exist on every node and carry no ordering signal.
func (g *Graph) Degree(id string) int {
	members := map[string]bool{id: true}
	if n, ok := g.nodes[id]; ok && n.Kind == KindRouter {
		for _, iface := range g.InterfacesOf(id) {
			members[iface.ID] = true
		}
	}

	degree := 0
	for _, e := range g.edges {
		if e.Kind == EdgeHierarchy {
			continue
		}
		if members[e.Source] || members[e.Target] {
			degree++
		}
	}
	return degree
}

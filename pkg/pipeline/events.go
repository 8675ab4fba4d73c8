package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/netscale-tools/bgpmap/pkg/topology"
)

var (
	// ErrUnknownEvent is returned when applying an event of an unknown kind.
	ErrUnknownEvent = errors.New("unknown event kind")

	// ErrEdgeNotFound is returned when a RemoveEdge event names an edge id
	// that is not present in the current document.
	ErrEdgeNotFound = errors.New("edge not found")
)

// EventKind names the incremental edit operations the core consumes.
type EventKind string

const (
	// EventAddNode adds one document node, optionally with a first edge.
	EventAddNode EventKind = "add-node"
	// EventRemoveEdge removes one document edge by id.
	EventRemoveEdge EventKind = "remove-edge"
)

// Event is one entry of the edit log. Events are immutable once created;
// replaying a prefix of the log reconstructs any intermediate topology.
type Event struct {
	ID   string    `json:"id"`
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`

	// AddNode payload: the node, and optionally its first edge.
	Node *topology.DocumentNode `json:"node,omitempty"`
	Edge *topology.DocumentEdge `json:"edge,omitempty"`

	// RemoveEdge payload.
	EdgeID string `json:"edgeId,omitempty"`
}

// NewAddNode creates an AddNode event. edge may be nil for an isolated node.
func NewAddNode(node topology.DocumentNode, edge *topology.DocumentEdge) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: EventAddNode,
		At:   time.Now().UTC(),
		Node: &node,
		Edge: edge,
	}
}

// NewRemoveEdge creates a RemoveEdge event for the document edge id formed
// by [DocumentEdgeID].
func NewRemoveEdge(edgeID string) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   EventRemoveEdge,
		At:     time.Now().UTC(),
		EdgeID: edgeID,
	}
}

// String describes the event for logs and the event TUI.
func (e Event) String() string {
	switch e.Kind {
	case EventAddNode:
		s := fmt.Sprintf("add node %s", e.Node.Data.ID)
		if e.Edge != nil {
			s += fmt.Sprintf(" with edge to %s", e.Edge.Data.Target)
		}
		return s
	case EventRemoveEdge:
		return fmt.Sprintf("remove edge %s", e.EdgeID)
	default:
		return string(e.Kind)
	}
}

// DocumentEdgeID forms the stable id of a raw document edge, used by
// RemoveEdge events. Raw edges carry no id on the wire, so one is derived
// from the endpoints and interface names.
func DocumentEdgeID(e topology.EdgeData) string {
	return fmt.Sprintf("%s~%s~%s~%s", e.Source, e.SourceInterface, e.Target, e.TargetInterface)
}

// applyEvent returns a copy of doc with the event applied.
func applyEvent(doc topology.Document, ev Event) (topology.Document, error) {
	out := topology.Document{
		Nodes: slices.Clone(doc.Nodes),
		Edges: slices.Clone(doc.Edges),
	}

	switch ev.Kind {
	case EventAddNode:
		if ev.Node == nil {
			return topology.Document{}, fmt.Errorf("%w: add-node without node", ErrUnknownEvent)
		}
		out.Nodes = append(out.Nodes, *ev.Node)
		if ev.Edge != nil {
			out.Edges = append(out.Edges, *ev.Edge)
		}
		return out, nil

	case EventRemoveEdge:
		idx := slices.IndexFunc(out.Edges, func(e topology.DocumentEdge) bool {
			return DocumentEdgeID(e.Data) == ev.EdgeID
		})
		if idx < 0 {
			return topology.Document{}, fmt.Errorf("%w: %s", ErrEdgeNotFound, ev.EdgeID)
		}
		out.Edges = slices.Delete(out.Edges, idx, idx+1)
		return out, nil

	default:
		return topology.Document{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

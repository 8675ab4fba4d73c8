// Package state persists user view state between sessions.
//
// View state is what survives a reload of the visualization: node positions
// the user arranged, per-node and per-edge color overrides, and lock flags.
// It is plain data to the layout core: seeding consumes it and the pipeline
// produces it. This package only stores it.
//
// Two Store backends are provided: a file store for CLI use and a Redis
// store for multi-instance serve deployments. Named layout snapshots have a
// separate archive backed by MongoDB.
package state

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/layout"
)

// ErrNotFound is returned by Store.Load when no view state exists for a key.
var ErrNotFound = errors.New("view state not found")

// Colors holds display color overrides keyed by node and edge id.
type Colors struct {
	Nodes map[string]string `json:"nodes" bson:"nodes" validate:"dive,hexcolor|startswith=#"`
	Edges map[string]string `json:"edges" bson:"edges" validate:"dive,hexcolor|startswith=#"`
}

// ViewState is the persisted visualization state for one topology.
type ViewState struct {
	Positions   map[string]graph.Position `json:"positions" bson:"positions" validate:"required"`
	Colors      Colors                    `json:"colors" bson:"colors"`
	LockedNodes map[string]bool           `json:"lockedNodes" bson:"lockedNodes" validate:"required"`
}

// New returns a ViewState with all maps initialized.
func New() ViewState {
	return ViewState{
		Positions: make(map[string]graph.Position),
		Colors: Colors{
			Nodes: make(map[string]string),
			Edges: make(map[string]string),
		},
		LockedNodes: make(map[string]bool),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a view state document received from an external client
// (the serve API) before it is stored or fed into seeding.
func (v ViewState) Validate() error {
	return validate.Struct(v)
}

// SavedNodes converts the view state into the saved-position map consumed by
// layout seeding. A node appears in the result when it has a saved position,
// a lock flag, or both; locked nodes without a position keep whatever
// position the graph already carries, so their entry is skipped here.
func (v ViewState) SavedNodes() map[string]layout.SavedNode {
	out := make(map[string]layout.SavedNode, len(v.Positions))
	for id, pos := range v.Positions {
		out[id] = layout.SavedNode{Position: pos, Locked: v.LockedNodes[id]}
	}
	return out
}

// Capture records the committed positions and lock flags of a laid-out graph
// plus any non-default colors, producing the document to persist.
func Capture(g *graph.Graph) ViewState {
	v := New()
	for _, n := range g.Nodes() {
		v.Positions[n.ID] = n.Position
		if n.Locked {
			v.LockedNodes[n.ID] = true
		}
		if c := n.Color; c != "" && c != defaultColor(n) {
			v.Colors.Nodes[n.ID] = c
		}
	}
	return v
}

func defaultColor(n *graph.Node) string {
	switch n.Kind {
	case graph.KindRouter:
		return graph.ColorRouter
	case graph.KindInterface:
		return graph.ColorInterface
	default:
		return graph.ColorAS
	}
}

// Store persists view state documents keyed by topology name.
type Store interface {
	// Load returns the stored state for key, or ErrNotFound.
	Load(ctx context.Context, key string) (ViewState, error)

	// Save stores the state for key, replacing any previous document.
	Save(ctx context.Context, key string, v ViewState) error

	// Delete removes the state for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

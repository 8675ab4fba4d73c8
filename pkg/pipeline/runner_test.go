package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/layout"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := layout.DefaultConfig()
	cfg.FullIterations = 40
	cfg.RealtimeIterations = 10

	r, err := NewRunner(topology.ExampleDocument(), Options{
		Layout: &cfg,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestRunFullPass(t *testing.T) {
	r := newTestRunner(t)

	res, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Stats.NodeCount != 17 {
		t.Errorf("NodeCount = %d, want 17", res.Stats.NodeCount)
	}
	if len(res.Layout.Nodes) != 17 || len(res.Layout.Edges) != 21 {
		t.Errorf("layout = %d nodes/%d edges, want 17/21", len(res.Layout.Nodes), len(res.Layout.Edges))
	}
	if len(res.Warnings) != 0 || len(res.Dropped) != 0 {
		t.Errorf("warnings = %v, dropped = %v, want none", res.Warnings, res.Dropped)
	}
	if res.Stats.Iterations != r.Config().FullIterations {
		t.Errorf("Iterations = %d, want full budget %d", res.Stats.Iterations, r.Config().FullIterations)
	}
}

func TestRunRespectsSavedPositions(t *testing.T) {
	r := newTestRunner(t)

	saved := map[string]layout.SavedNode{
		"R1": {Position: graph.Position{X: 222, Y: 444}, Locked: true},
	}
	res, err := r.Run(context.Background(), saved)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	r1, ok := res.Graph.Node("R1")
	if !ok {
		t.Fatal("R1 missing")
	}
	if r1.Position != (graph.Position{X: 222, Y: 444}) {
		t.Errorf("locked R1 = %v, want saved position kept through the pass", r1.Position)
	}
}

func TestApplyEditAddNode(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Run(ctx, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	node := topology.DocumentNode{Data: topology.NodeData{
		ID:         "R6",
		Label:      "R6",
		Parent:     "AS100",
		Interfaces: map[string]string{"eth0": "10.16.16.6/24"},
	}}
	res, err := r.ApplyEdit(ctx, NewAddNode(node, nil))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}

	// One router and one interface appear.
	if res.Stats.NodeCount != 19 {
		t.Errorf("NodeCount = %d, want 19", res.Stats.NodeCount)
	}
	if res.Stats.Iterations != r.Config().RealtimeIterations {
		t.Errorf("Iterations = %d, want realtime budget", res.Stats.Iterations)
	}
	if got := len(r.Events()); got != 1 {
		t.Errorf("event log length = %d, want 1", got)
	}
	if _, ok := r.Document().Node("R6"); !ok {
		t.Error("R6 missing from current document")
	}
}

func TestRunDeterministic(t *testing.T) {
	ctx := context.Background()

	run := func() map[string]graph.Position {
		res, err := newTestRunner(t).Run(ctx, nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		out := make(map[string]graph.Position)
		for _, n := range res.Graph.Nodes() {
			out[n.ID] = n.Position
		}
		return out
	}

	first := run()
	second := run()
	for id, pos := range first {
		if second[id] != pos {
			t.Fatalf("node %s at %v and %v across identical runs", id, pos, second[id])
		}
	}
}

func TestApplyEditAddNodeWithEdge(t *testing.T) {
	b := topology.NewBuilder()
	b.AddAS("AS500", "AS 500")
	b.AddAS("AS600", "AS 600")
	b.AddRouter("R11", "R11", "AS500")
	b.AddRouter("R12", "R12", "AS500")
	b.AddRouter("R13", "R13", "AS600")
	b.AddRouter("R14", "R14", "AS600")
	b.AddLink("R11", "R13", "10.1.1.1/30", "10.1.1.2/30")
	b.AddLink("R12", "R14", "10.1.2.1/30", "10.1.2.2/30")
	doc := b.Document()

	// R14 carries a spare port the new router will link into.
	for i := range doc.Nodes {
		if doc.Nodes[i].Data.ID == "R14" {
			doc.Nodes[i].Data.Interfaces["eth1"] = "10.1.3.2/30"
		}
	}

	cfg := layout.DefaultConfig()
	cfg.FullIterations = 40
	cfg.RealtimeIterations = 10
	r, err := NewRunner(doc, Options{Layout: &cfg, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx := context.Background()
	res, err := r.Run(ctx, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 2 AS + 4 routers + 5 interfaces.
	if res.Stats.NodeCount != 11 {
		t.Fatalf("base NodeCount = %d, want 11", res.Stats.NodeCount)
	}

	node := topology.DocumentNode{Data: topology.NodeData{
		ID:         "R16",
		Label:      "R16",
		Parent:     "AS600",
		Interfaces: map[string]string{"eth0": "10.1.3.1/30"},
	}}
	edge := &topology.DocumentEdge{Data: topology.EdgeData{
		Source:          "R16",
		Target:          "R14",
		SourceInterface: "eth0",
		TargetInterface: "eth1",
		Weight:          "10.1.3.0/30",
	}}
	res, err = r.ApplyEdit(ctx, NewAddNode(node, edge))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}

	if res.Stats.NodeCount != 13 {
		t.Errorf("NodeCount = %d, want 13 (router plus interface added)", res.Stats.NodeCount)
	}
	// 3 topology + 11 hierarchy + 3 shadows.
	if len(res.Layout.Edges) != 17 {
		t.Errorf("layout edges = %d, want 17", len(res.Layout.Edges))
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}
	if res.Stats.Iterations != cfg.RealtimeIterations {
		t.Errorf("Iterations = %d, want realtime budget", res.Stats.Iterations)
	}
}

func TestApplyEditRemoveEdge(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	doc := r.Document()
	edgeID := DocumentEdgeID(doc.Edges[0].Data)

	res, err := r.ApplyEdit(ctx, NewRemoveEdge(edgeID))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if got := len(r.Document().Edges); got != len(doc.Edges)-1 {
		t.Errorf("document edges = %d, want %d", got, len(doc.Edges)-1)
	}
	// One topology edge and its router shadow disappear.
	if len(res.Layout.Edges) != 19 {
		t.Errorf("layout edges = %d, want 19", len(res.Layout.Edges))
	}
}

func TestApplyEditUnknownEdge(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.ApplyEdit(context.Background(), NewRemoveEdge("R9~eth0~R8~eth0"))
	if !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("ApplyEdit error = %v, want ErrEdgeNotFound", err)
	}
	if got := len(r.Events()); got != 0 {
		t.Errorf("failed edit appended to log: %d events", got)
	}
}

func TestApplyEditRejectsInvalidDocument(t *testing.T) {
	r := newTestRunner(t)

	// Duplicate id: validation rejects the new document, the edit must not
	// be committed.
	node := topology.DocumentNode{Data: topology.NodeData{ID: "R1", Parent: "AS100"}}
	_, err := r.ApplyEdit(context.Background(), NewAddNode(node, nil))
	if !errors.Is(err, topology.ErrDuplicateNodeID) {
		t.Errorf("ApplyEdit error = %v, want ErrDuplicateNodeID", err)
	}
	if got := len(r.Document().Nodes); got != 9 {
		t.Errorf("rejected edit mutated the document: %d nodes", got)
	}
	if got := len(r.Events()); got != 0 {
		t.Errorf("rejected edit appended to log: %d events", got)
	}
}

func TestReplayIsReadOnly(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	node := topology.DocumentNode{Data: topology.NodeData{
		ID: "R6", Parent: "AS100", Interfaces: map[string]string{"eth0": "10.16.16.6/24"},
	}}
	if _, err := r.ApplyEdit(ctx, NewAddNode(node, nil)); err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}

	res, err := r.Replay(ctx, 0)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if res.Stats.NodeCount != 17 {
		t.Errorf("Replay(0) NodeCount = %d, want base 17", res.Stats.NodeCount)
	}

	// The current document and log are untouched.
	if _, ok := r.Document().Node("R6"); !ok {
		t.Error("Replay removed R6 from the current document")
	}
	if got := len(r.Events()); got != 1 {
		t.Errorf("Replay changed the event log: %d events", got)
	}

	res, err = r.Replay(ctx, 1)
	if err != nil {
		t.Fatalf("Replay(1): %v", err)
	}
	if res.Stats.NodeCount != 19 {
		t.Errorf("Replay(1) NodeCount = %d, want 19", res.Stats.NodeCount)
	}
}

func TestReplayOutOfRange(t *testing.T) {
	r := newTestRunner(t)

	if _, err := r.Replay(context.Background(), 1); err == nil {
		t.Error("Replay(1) on an empty log succeeded, want error")
	}
	if _, err := r.Replay(context.Background(), -1); err == nil {
		t.Error("Replay(-1) succeeded, want error")
	}
}

func TestDocumentEdgeID(t *testing.T) {
	e := topology.EdgeData{Source: "R1", Target: "R2", SourceInterface: "eth0", TargetInterface: "eth1"}
	if got := DocumentEdgeID(e); got != "R1~eth0~R2~eth1" {
		t.Errorf("DocumentEdgeID = %q", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Layout == nil || opts.Logger == nil {
		t.Fatal("defaults not applied")
	}
	if opts.Layout.Width != layout.DefaultConfig().Width {
		t.Errorf("default layout width = %v", opts.Layout.Width)
	}

	// Idempotent.
	before := opts.Layout
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults: %v", err)
	}
	if opts.Layout != before {
		t.Error("defaults replaced on second call")
	}
}

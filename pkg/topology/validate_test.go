package topology

import (
	"errors"
	"testing"
)

// twoRouterDoc builds a minimal valid document: two routers in two ASes
// linked by one /30 point-to-point edge.
func twoRouterDoc() Document {
	return Document{
		Nodes: []DocumentNode{
			{Data: NodeData{ID: "AS1"}},
			{Data: NodeData{ID: "AS2"}},
			{Data: NodeData{ID: "R1", Parent: "AS1", Interfaces: map[string]string{"eth0": "10.0.0.1/30"}}},
			{Data: NodeData{ID: "R2", Parent: "AS2", Interfaces: map[string]string{"eth0": "10.0.0.2/30"}}},
		},
		Edges: []DocumentEdge{
			{Data: EdgeData{Source: "R1", Target: "R2", SourceInterface: "eth0", TargetInterface: "eth0", Weight: "10.0.0.0/30"}},
		},
	}
}

func TestValidateCleanDocument(t *testing.T) {
	warnings, err := Validate(twoRouterDoc())
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Validate() warnings = %v, want none", warnings)
	}
}

func TestValidateExampleDocument(t *testing.T) {
	warnings, err := Validate(ExampleDocument())
	if err != nil {
		t.Fatalf("Validate(ExampleDocument()) error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Validate(ExampleDocument()) warnings = %v, want none", warnings)
	}
}

func TestValidateFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		want   error
	}{
		{
			name:   "empty node id",
			mutate: func(d *Document) { d.Nodes[2].Data.ID = "" },
			want:   ErrMissingNodeID,
		},
		{
			name:   "duplicate node id",
			mutate: func(d *Document) { d.Nodes[3].Data.ID = "R1" },
			want:   ErrDuplicateNodeID,
		},
		{
			name:   "unknown parent",
			mutate: func(d *Document) { d.Nodes[2].Data.Parent = "AS99" },
			want:   ErrUnknownParent,
		},
		{
			name:   "unknown source endpoint",
			mutate: func(d *Document) { d.Edges[0].Data.Source = "R9" },
			want:   ErrUnknownEndpoint,
		},
		{
			name:   "unknown target endpoint",
			mutate: func(d *Document) { d.Edges[0].Data.Target = "R9" },
			want:   ErrUnknownEndpoint,
		},
		{
			name:   "undeclared interface",
			mutate: func(d *Document) { d.Edges[0].Data.SourceInterface = "eth7" },
			want:   ErrUnknownInterface,
		},
		{
			name:   "malformed interface address",
			mutate: func(d *Document) { d.Nodes[2].Data.Interfaces["eth0"] = "10.0.0.1" },
			want:   ErrInvalidCIDR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := twoRouterDoc()
			tt.mutate(&doc)
			_, err := Validate(doc)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateCollectsAllFatal(t *testing.T) {
	doc := twoRouterDoc()
	doc.Nodes[2].Data.Parent = "AS99"
	doc.Edges[0].Data.Target = "R9"

	_, err := Validate(doc)
	if !errors.Is(err, ErrUnknownParent) {
		t.Errorf("joined error misses ErrUnknownParent: %v", err)
	}
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("joined error misses ErrUnknownEndpoint: %v", err)
	}
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		want   WarningCode
	}{
		{
			name: "duplicate ip",
			mutate: func(d *Document) {
				d.Nodes[3].Data.Interfaces["eth0"] = "10.0.0.1/30"
			},
			want: WarnDuplicateIP,
		},
		{
			name: "subnet mismatch",
			mutate: func(d *Document) {
				// 10.0.0.1 and 10.0.0.2 live in 10.0.0.0/30, not 10.0.0.4/30.
				d.Edges[0].Data.Weight = "10.0.0.4/30"
			},
			want: WarnSubnetMismatch,
		},
		{
			name: "duplicate edge",
			mutate: func(d *Document) {
				d.Edges = append(d.Edges, d.Edges[0])
			},
			want: WarnDuplicateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := twoRouterDoc()
			tt.mutate(&doc)
			warnings, err := Validate(doc)
			if err != nil {
				t.Fatalf("Validate() error = %v, want warnings only", err)
			}
			found := false
			for _, w := range warnings {
				if w.Code == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() warnings = %v, want code %s", warnings, tt.want)
			}
		})
	}
}

func TestValidateSubnetMatchIsSilent(t *testing.T) {
	doc := twoRouterDoc()
	warnings, err := Validate(doc)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, w := range warnings {
		if w.Code == WarnSubnetMismatch {
			t.Errorf("unexpected subnet mismatch: %s", w.Message)
		}
	}
}

func TestValidateASEndpointResolvesAnyInterface(t *testing.T) {
	// Edges may terminate on an AS container directly; interface names on
	// nodes without an interface map carry no address to check.
	doc := twoRouterDoc()
	doc.Edges = append(doc.Edges, DocumentEdge{Data: EdgeData{
		Source: "AS1", Target: "R2", SourceInterface: "any", TargetInterface: "eth0",
	}})

	if _, err := Validate(doc); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

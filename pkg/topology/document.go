package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedDocument is returned by the Read functions when the input is not
// a JSON object carrying both a "nodes" and an "edges" array.
var ErrMalformedDocument = errors.New("malformed topology document")

// NodeData holds the attributes of one raw document node.
// Nodes without a Parent are autonomous systems; nodes with a Parent are
// routers, and their Interfaces map names to "ip/prefix" strings.
type NodeData struct {
	ID         string            `json:"id" bson:"id"`
	Label      string            `json:"label,omitempty" bson:"label,omitempty"`
	Parent     string            `json:"parent,omitempty" bson:"parent,omitempty"`
	Interfaces map[string]string `json:"interfaces,omitempty" bson:"interfaces,omitempty"`
}

// EdgeData holds the attributes of one raw document edge: a router-to-router
// link named by the interface on each side, carrying the subnet as Weight.
type EdgeData struct {
	Source          string `json:"source" bson:"source"`
	Target          string `json:"target" bson:"target"`
	SourceInterface string `json:"sourceInterface" bson:"sourceInterface"`
	TargetInterface string `json:"targetInterface" bson:"targetInterface"`
	Weight          string `json:"weight,omitempty" bson:"weight,omitempty"`
}

// DocumentNode wraps NodeData under the "data" key used by the wire format.
type DocumentNode struct {
	Data NodeData `json:"data" bson:"data"`
}

// DocumentEdge wraps EdgeData under the "data" key used by the wire format.
type DocumentEdge struct {
	Data EdgeData `json:"data" bson:"data"`
}

// Document is a raw topology document as loaded from disk or received over
// HTTP, before any validation or transformation.
type Document struct {
	Nodes []DocumentNode `json:"nodes" bson:"nodes"`
	Edges []DocumentEdge `json:"edges" bson:"edges"`
}

// ReadDocument decodes a topology document from r.
// Returns ErrMalformedDocument (wrapped) when the JSON is not an object or
// either top-level array is missing.
func ReadDocument(r io.Reader) (Document, error) {
	var probe struct {
		Nodes *[]DocumentNode `json:"nodes"`
		Edges *[]DocumentEdge `json:"edges"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if probe.Nodes == nil || probe.Edges == nil {
		return Document{}, fmt.Errorf("%w: nodes or edges array missing", ErrMalformedDocument)
	}
	return Document{Nodes: *probe.Nodes, Edges: *probe.Edges}, nil
}

// ReadDocumentFile reads and decodes a topology document from path.
func ReadDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := ReadDocument(f)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}

// WriteDocument encodes the document as indented JSON to w.
func WriteDocument(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDocumentFile writes the document to a JSON file with 0644 permissions.
func WriteDocumentFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f)
}

// Node returns the document node with the given id and true, or a zero value
// and false when no such node exists.
func (d Document) Node(id string) (DocumentNode, bool) {
	for _, n := range d.Nodes {
		if n.Data.ID == id {
			return n, true
		}
	}
	return DocumentNode{}, false
}

// Package render serializes laid-out topology graphs for display surfaces.
//
// The core layout engine never draws. This package produces the two formats
// consumed by rendering collaborators:
//
//   - Layout: a plain JSON document of positioned nodes and typed edges,
//     handed to the browser renderer by the serve API or written to disk by
//     the layout command.
//   - DOT: a Graphviz document with pinned node positions, rendered to SVG or
//     PNG via goccy/go-graphviz for static output.
//
// Hierarchy and router-shadow edges are carried in the JSON (the browser
// renderer decides their visibility) but omitted from DOT, where AS
// membership is drawn as clusters instead.
package render

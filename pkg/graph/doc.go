// Package graph holds the derived topology model that the layout engine
// operates on.
//
// A raw topology document declares autonomous systems, routers, and
// router-to-router links named by interface. This package expands that
// document into a three-level node set (AS containers, routers, interface
// leaves) and a typed edge set:
//
//   - Topology edges connect two interface nodes and carry the link subnet.
//   - Hierarchy edges express containment (AS→Router, Router→Interface) and
//     are invisible in rendering; they exist to pull families together during
//     layout.
//   - RouterShadow edges are derived, deduplicated links between two routers
//     whose interfaces share at least one topology edge, used only to bias
//     router clustering.
//
// Build is the single entry point: it expands interfaces, retargets edges
// onto interface nodes, and synthesizes the hierarchy and shadow edges. All
// lookup state (interface→router, AS membership) lives on the returned Graph;
// nothing is kept in package-level variables.
package graph

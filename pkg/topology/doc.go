// Package topology defines the raw BGP topology document format and its
// validation rules.
//
// # Document Format
//
// A topology document is a JSON object with two required arrays, matching the
// format produced by network export tooling:
//
//	{
//	  "nodes": [
//	    {"data": {"id": "AS100", "label": "AS 100"}},
//	    {"data": {"id": "R1", "label": "R1", "parent": "AS100",
//	              "interfaces": {"eth0": "10.12.12.1/24"}}}
//	  ],
//	  "edges": [
//	    {"data": {"source": "R1", "target": "R2",
//	              "sourceInterface": "eth0", "targetInterface": "eth0",
//	              "weight": "10.12.12.0/24"}}
//	  ]
//	}
//
// Nodes without a parent are autonomous systems (AS); nodes with a parent are
// routers owned by that AS. Router interfaces map interface names to
// IP/prefix strings. Edge weights carry the link subnet in CIDR notation.
//
// # Validation
//
// Validate distinguishes fatal structural errors from non-fatal semantic
// warnings. Structural errors (duplicate ids, malformed IPs, edges referencing
// unknown nodes or interfaces) abort processing: no layout ever runs on an
// inconsistent document. Semantic anomalies (an edge subnet that doesn't match
// its endpoint addresses, a reused IP, a duplicate edge) are collected as
// warnings and processing continues with best-effort data.
package topology

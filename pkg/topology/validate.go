package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingNodeID is returned by Validate when a node has an empty id.
	ErrMissingNodeID = errors.New("node id must not be empty")

	// ErrDuplicateNodeID is returned by Validate when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownParent is returned by Validate when a router names a parent
	// AS that does not exist in the document.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrUnknownEndpoint is returned by Validate when an edge references a
	// source or target node that does not exist.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrUnknownInterface is returned by Validate when an edge names an
	// interface that is not declared on its endpoint router.
	ErrUnknownInterface = errors.New("unknown interface")
)

// WarningCode classifies non-fatal semantic anomalies.
type WarningCode string

// Warning codes emitted by Validate.
const (
	WarnDuplicateIP    WarningCode = "DUPLICATE_IP"
	WarnSubnetMismatch WarningCode = "SUBNET_MISMATCH"
	WarnDuplicateEdge  WarningCode = "DUPLICATE_EDGE"
)

// Warning is a non-fatal semantic anomaly found during validation.
// Warnings are reported, never fixed: layout proceeds on best-effort data.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// String implements fmt.Stringer.
func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

// Validate checks the structural and semantic consistency of a raw document.
//
// Structural violations are fatal: all of them are collected and returned as
// a single joined error, and callers must not run any transformation or
// layout on a document that failed validation. Semantic anomalies are
// returned as warnings alongside a nil error.
//
// Fatal conditions:
//   - empty or duplicate node id
//   - a router parent referencing a nonexistent node
//   - a malformed interface address (not "a.b.c.d/p", octets 0-255, prefix 0-32)
//   - an edge referencing a nonexistent source/target node
//   - an edge naming an interface not declared on that router
//
// Warnings:
//   - the same IP address declared on more than one interface
//   - an edge weight whose subnet does not match the network address computed
//     from both endpoint IPs at the edge's prefix length
//   - more than one edge between the same unordered node pair
func Validate(doc Document) ([]Warning, error) {
	var fatal []error
	var warnings []Warning

	nodes := make(map[string]NodeData, len(doc.Nodes))
	ipOwners := make(map[string]string) // ip/prefix -> first owning node id

	for _, n := range doc.Nodes {
		data := n.Data
		if data.ID == "" {
			fatal = append(fatal, ErrMissingNodeID)
			continue
		}
		if _, seen := nodes[data.ID]; seen {
			fatal = append(fatal, fmt.Errorf("%w: %q", ErrDuplicateNodeID, data.ID))
			continue
		}
		nodes[data.ID] = data

		for name, ip := range data.Interfaces {
			if _, err := ParseCIDR(ip); err != nil {
				fatal = append(fatal, fmt.Errorf("node %q interface %q: %w", data.ID, name, err))
				continue
			}
			if owner, dup := ipOwners[ip]; dup && owner != data.ID {
				warnings = append(warnings, Warning{
					Code:    WarnDuplicateIP,
					Message: fmt.Sprintf("address %s on %s already declared on %s", ip, data.ID, owner),
				})
			} else if !dup {
				ipOwners[ip] = data.ID
			}
		}
	}

	for _, n := range doc.Nodes {
		if n.Data.Parent == "" {
			continue
		}
		if _, ok := nodes[n.Data.Parent]; !ok {
			fatal = append(fatal, fmt.Errorf("node %q: %w: %q", n.Data.ID, ErrUnknownParent, n.Data.Parent))
		}
	}

	seenPairs := make(map[string]bool)
	for _, e := range doc.Edges {
		data := e.Data
		src, srcOK := nodes[data.Source]
		dst, dstOK := nodes[data.Target]
		if !srcOK {
			fatal = append(fatal, fmt.Errorf("edge %s-%s: %w: %q", data.Source, data.Target, ErrUnknownEndpoint, data.Source))
		}
		if !dstOK {
			fatal = append(fatal, fmt.Errorf("edge %s-%s: %w: %q", data.Source, data.Target, ErrUnknownEndpoint, data.Target))
		}
		if !srcOK || !dstOK {
			continue
		}

		srcIP, err := endpointIP(src, data.SourceInterface)
		if err != nil {
			fatal = append(fatal, fmt.Errorf("edge %s-%s: %w", data.Source, data.Target, err))
		}
		dstIP, err := endpointIP(dst, data.TargetInterface)
		if err != nil {
			fatal = append(fatal, fmt.Errorf("edge %s-%s: %w", data.Source, data.Target, err))
		}

		if w, mismatch := checkSubnet(data, srcIP, dstIP); mismatch {
			warnings = append(warnings, w)
		}

		key := pairKey(data.Source, data.Target)
		if seenPairs[key] {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateEdge,
				Message: fmt.Sprintf("duplicate edge between %s and %s", data.Source, data.Target),
			})
		}
		seenPairs[key] = true
	}

	if len(fatal) > 0 {
		return warnings, errors.Join(fatal...)
	}
	return warnings, nil
}

// endpointIP resolves the declared address of a named interface on a node.
// Nodes without interfaces (AS containers) resolve every name to "" so that
// hierarchy-only documents stay valid.
func endpointIP(n NodeData, iface string) (string, error) {
	if len(n.Interfaces) == 0 {
		return "", nil
	}
	ip, ok := n.Interfaces[iface]
	if !ok {
		return "", fmt.Errorf("%w: %q not declared on %q", ErrUnknownInterface, iface, n.ID)
	}
	return ip, nil
}

// checkSubnet verifies that the edge weight names the network both endpoint
// addresses fall into at the weight's prefix length. Unparseable values are
// skipped here: malformed interface IPs are already fatal, and an absent or
// malformed weight simply carries no subnet claim to verify.
func checkSubnet(e EdgeData, srcIP, dstIP string) (Warning, bool) {
	weight, err := ParseCIDR(e.Weight)
	if err != nil {
		return Warning{}, false
	}

	for _, ip := range []string{srcIP, dstIP} {
		c, err := ParseCIDR(ip)
		if err != nil {
			continue
		}
		c.Prefix = weight.Prefix
		if c.Network() != weight.Network() {
			return Warning{
				Code: WarnSubnetMismatch,
				Message: fmt.Sprintf("edge %s-%s weight %s does not contain %s",
					e.Source, e.Target, e.Weight, ip),
			}, true
		}
	}
	return Warning{}, false
}

// pairKey builds an order-independent key for an unordered node pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

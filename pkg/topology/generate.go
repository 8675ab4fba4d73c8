package topology

import "fmt"

// ExampleDocument builds the five-router reference topology used in the docs
// and examples: R1 in AS100, R2 and R3 in AS200, R4 in AS300, R5 in AS400,
// with four point-to-point /24 links.
func ExampleDocument() Document {
	b := NewBuilder()

	b.AddAS("AS100", "AS 100")
	b.AddAS("AS200", "AS 200")
	b.AddAS("AS300", "AS 300")
	b.AddAS("AS400", "AS 400")

	b.AddRouter("R1", "R1 (1.1.1.0/24)", "AS100")
	b.AddRouter("R2", "R2 (2.2.2.0/24)", "AS200")
	b.AddRouter("R3", "R3 (3.3.3.0/24)", "AS200")
	b.AddRouter("R4", "R4 (4.4.4.0/24)", "AS300")
	b.AddRouter("R5", "R5 (5.5.5.0/24)", "AS400")

	b.AddLink("R1", "R2", "10.12.12.1/24", "10.12.12.2/24")
	b.AddLink("R2", "R3", "10.23.23.2/24", "10.23.23.3/24")
	b.AddLink("R2", "R4", "10.24.24.2/24", "10.24.24.4/24")
	b.AddLink("R3", "R5", "10.35.35.3/24", "10.35.35.5/24")

	return b.Document()
}

// Builder assembles topology documents programmatically. Links automatically
// allocate eth0, eth1, ... interface names on each endpoint and derive the
// edge weight from the source address's network.
type Builder struct {
	doc     Document
	routers map[string]int // router id -> next interface ordinal
}

// NewBuilder returns an empty document builder.
func NewBuilder() *Builder {
	return &Builder{routers: make(map[string]int)}
}

// AddAS appends an autonomous-system container node.
func (b *Builder) AddAS(id, label string) {
	b.doc.Nodes = append(b.doc.Nodes, DocumentNode{Data: NodeData{ID: id, Label: label}})
}

// AddRouter appends a router node owned by the given AS.
func (b *Builder) AddRouter(id, label, parent string) {
	b.doc.Nodes = append(b.doc.Nodes, DocumentNode{Data: NodeData{
		ID:         id,
		Label:      label,
		Parent:     parent,
		Interfaces: map[string]string{},
	}})
	b.routers[id] = 0
}

// AddLink declares a point-to-point link between two routers, allocating one
// interface on each side. Addresses are "ip/prefix" strings; the edge weight
// is the network of the source address.
func (b *Builder) AddLink(source, target, sourceIP, targetIP string) {
	srcIface := b.nextInterface(source, sourceIP)
	dstIface := b.nextInterface(target, targetIP)

	weight := sourceIP
	if c, err := ParseCIDR(sourceIP); err == nil {
		weight = CIDR{Addr: c.Network(), Prefix: c.Prefix}.String()
	}

	b.doc.Edges = append(b.doc.Edges, DocumentEdge{Data: EdgeData{
		Source:          source,
		Target:          target,
		SourceInterface: srcIface,
		TargetInterface: dstIface,
		Weight:          weight,
	}})
}

// Document returns the assembled document.
func (b *Builder) Document() Document { return b.doc }

func (b *Builder) nextInterface(routerID, ip string) string {
	name := fmt.Sprintf("eth%d", b.routers[routerID])
	b.routers[routerID]++
	for i := range b.doc.Nodes {
		if b.doc.Nodes[i].Data.ID == routerID {
			if b.doc.Nodes[i].Data.Interfaces == nil {
				b.doc.Nodes[i].Data.Interfaces = map[string]string{}
			}
			b.doc.Nodes[i].Data.Interfaces[name] = ip
		}
	}
	return name
}

package lineage

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/dag"
)

// Default layout units, in pixels.
const (
	DefaultUnitX = 150.0
	DefaultUnitY = 60.0
)

// Role is the connector role of a rendered node.
type Role string

const (
	// RoleInput marks nodes with nothing further upstream.
	RoleInput Role = "input"
	// RoleOutput marks nodes with nothing further downstream.
	RoleOutput Role = "output"
	// RoleDefault marks pass-through nodes.
	RoleDefault Role = "default"
)

// Node is a positioned, role-classified node instance.
type Node struct {
	ID     string // depth-qualified instance ID
	Entity EntityReference
	Depth  int
	Slot   int
	X, Y   float64
	Role   Role
	Core   bool // focal entity
	Weight int  // weight of the edge that discovered the node
}

// Label returns the display label of the node's entity.
func (n Node) Label() string { return n.Entity.Label() }

// Selected converts the node into the payload handed to selection callbacks.
func (n Node) Selected() SelectedNode {
	return SelectedNode{ID: n.ID, Name: n.Entity.Name, Type: n.Entity.Type}
}

// RenderedEdge connects two node instances.
type RenderedEdge struct {
	ID     string
	Source string
	Target string
	Weight int
}

// Row lists the node instances at one depth in slot order.
type Row struct {
	Depth   int
	NodeIDs []string
}

// Graph is the builder output: the focal node first, then upstream and
// downstream nodes in discovery order, then edges in consumption order.
// Rows are in ascending depth.
type Graph struct {
	Nodes []Node
	Edges []RenderedEdge
	Rows  []Row
}

// Focal returns the focal node.
func (g Graph) Focal() Node {
	for _, n := range g.Nodes {
		if n.Core {
			return n
		}
	}
	return Node{}
}

// Node returns the node with the given instance ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Builder turns lineage records into positioned graphs.
// A Builder holds only configuration and is safe for concurrent use.
type Builder struct {
	unitX float64
	unitY float64
}

// Option configures a Builder.
type Option func(*Builder)

// WithUnits overrides the horizontal and vertical layout units.
// Non-positive values keep the defaults.
func WithUnits(x, y float64) Option {
	return func(b *Builder) {
		if x > 0 {
			b.unitX = x
		}
		if y > 0 {
			b.unitY = y
		}
	}
}

// NewBuilder creates a Builder with default units.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{unitX: DefaultUnitX, unitY: DefaultUnitY}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lays out a record with default units.
func Build(r Record) (Graph, error) {
	return NewBuilder().Build(r)
}

// Build lays out a record. It returns ErrNoLineage when the record has no
// edges at all; unresolvable edges are dropped and never cause an error.
func (b *Builder) Build(r Record) (Graph, error) {
	if err := r.Validate(); err != nil {
		return Graph{}, err
	}
	if !r.HasLineage() {
		return Graph{}, ErrNoLineage
	}

	layers := AssignLayers(NewEdgeIndex(r), r.Entity)

	focal := Node{
		ID:     nodeID(r.Entity.ID, 0, 0, nil),
		Entity: r.Entity,
		Core:   true,
	}
	g := Graph{Nodes: []Node{focal}}
	taken := map[string]bool{focal.ID: true}

	ids := make(map[Direction][]string, 2)
	for _, d := range []Direction{Upstream, Downstream} {
		placements := layers.Placements(d)
		ids[d] = make([]string, len(placements))
		for i, p := range placements {
			id := nodeID(p.Entity.ID, p.Depth, p.Slot, taken)
			taken[id] = true
			ids[d][i] = id
			g.Nodes = append(g.Nodes, Node{
				ID:     id,
				Entity: p.Entity,
				Depth:  p.Depth,
				Slot:   p.Slot,
				X:      b.x(p.Depth),
				Y:      float64(p.Slot) * b.unitY,
				Weight: p.Weight,
			})
		}
	}

	for _, d := range []Direction{Upstream, Downstream} {
		for i, p := range layers.Placements(d) {
			near := focal.ID
			if p.Parent != FocalParent {
				near = ids[d][p.Parent]
			}
			source, target := near, ids[d][i]
			if d == Upstream {
				source, target = target, near
			}
			g.Edges = append(g.Edges, RenderedEdge{
				ID:     "edge-" + source + "-" + target,
				Source: source,
				Target: target,
				Weight: p.Weight,
			})
		}
	}

	layered, err := toDAG(g)
	if err != nil {
		return Graph{}, err
	}
	classify(g.Nodes, layered)
	g.Rows = rowsOf(layered)
	return g, nil
}

// x maps a signed depth to a horizontal coordinate.
func (b *Builder) x(depth int) float64 {
	return float64(depth) * 2 * b.unitX
}

// nodeID builds a depth-qualified instance ID. The slot suffix is only added
// when the plain ID is already taken by an earlier instance at the same depth.
func nodeID(entityID string, depth, slot int, taken map[string]bool) string {
	var id string
	switch {
	case depth < 0:
		id = fmt.Sprintf("node-%s-u%d", entityID, -depth)
	case depth > 0:
		id = fmt.Sprintf("node-%s-d%d", entityID, depth)
	default:
		id = fmt.Sprintf("node-%s-0", entityID)
	}
	if taken[id] {
		id = fmt.Sprintf("%s-%d", id, slot)
	}
	return id
}

// toDAG loads the rendered graph into a row-layered DAG keyed by depth and
// checks that every edge connects adjacent depths.
func toDAG(g Graph) (*dag.DAG, error) {
	d := dag.New()
	for _, n := range g.Nodes {
		if err := d.AddNode(dag.Node{ID: n.ID, Row: n.Depth}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		if err := d.AddEdge(dag.Edge{From: e.Source, To: e.Target}); err != nil {
			return nil, fmt.Errorf("add edge %s: %w", e.ID, err)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("validate layers: %w", err)
	}
	return d, nil
}

func rowsOf(d *dag.DAG) []Row {
	depths := d.RowIDs()
	rows := make([]Row, len(depths))
	for i, depth := range depths {
		nodes := d.NodesInRow(depth)
		ids := make([]string, len(nodes))
		for j, n := range nodes {
			ids[j] = n.ID
		}
		rows[i] = Row{Depth: depth, NodeIDs: ids}
	}
	return rows
}

// classify assigns connector roles from rendered in/out degrees.
func classify(nodes []Node, d *dag.DAG) {
	for i := range nodes {
		n := &nodes[i]
		in, out := d.InDegree(n.ID) > 0, d.OutDegree(n.ID) > 0
		switch {
		case n.Core:
			switch {
			case in && out:
				n.Role = RoleDefault
			case out:
				n.Role = RoleOutput
			default:
				n.Role = RoleInput
			}
		case n.Depth < 0 && !in:
			n.Role = RoleInput
		case n.Depth > 0 && !out:
			n.Role = RoleOutput
		default:
			n.Role = RoleDefault
		}
	}
}

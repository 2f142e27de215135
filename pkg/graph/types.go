package graph

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// =============================================================================
// Constants
// =============================================================================

// Visualization types.
const (
	VizTypeNodelink = "nodelink"
)

// EmptyMessage is shown in place of a graph when a record has no lineage.
const EmptyMessage = "No Lineage data available"

// =============================================================================
// Layout - Positioned Lineage Graph
// =============================================================================

// Layout is the serialized form of a built lineage graph.
//
// Nodes are ordered as the builder emitted them: the focal node first, then
// upstream and downstream instances in discovery order. Rows maps each signed
// depth to its node IDs in slot order.
type Layout struct {
	VizType  string `json:"viz_type" bson:"viz_type"`
	EntityID string `json:"entity_id" bson:"entity_id"`
	Focal    string `json:"focal,omitempty" bson:"focal,omitempty"`

	// Revision identifies the record the layout was built from. A layout
	// built from a different record of the same entity has another revision.
	Revision string `json:"revision,omitempty" bson:"revision,omitempty"`

	Nodes []Node           `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []Edge           `json:"edges,omitempty" bson:"edges,omitempty"`
	Rows  map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`

	// Bounding box of node anchor points.
	MinX   float64 `json:"min_x" bson:"min_x"`
	MinY   float64 `json:"min_y" bson:"min_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	UnitX float64 `json:"unit_x,omitempty" bson:"unit_x,omitempty"`
	UnitY float64 `json:"unit_y,omitempty" bson:"unit_y,omitempty"`

	Empty   bool   `json:"empty,omitempty" bson:"empty,omitempty"`
	Message string `json:"message,omitempty" bson:"message,omitempty"`

	// Graphviz source, filled in by the render stage.
	DOT string `json:"dot,omitempty" bson:"dot,omitempty"`
}

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Node returns the node with the given instance ID.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// =============================================================================
// Node / Edge
// =============================================================================

// Node is a positioned entity instance.
type Node struct {
	ID       string  `json:"id" bson:"id"`
	EntityID string  `json:"entity_id" bson:"entity_id"`
	Label    string  `json:"label" bson:"label"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Type     string  `json:"type,omitempty" bson:"type,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Depth    int     `json:"depth" bson:"depth"`
	Slot     int     `json:"slot" bson:"slot"`
	Role     string  `json:"role" bson:"role"`
	Core     bool    `json:"core,omitempty" bson:"core,omitempty"`
	Weight   int     `json:"weight,omitempty" bson:"weight,omitempty"`
}

// Edge is a rendered connection between two node instances.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Weight int    `json:"weight,omitempty" bson:"weight,omitempty"`
}

// =============================================================================
// lineage.Graph ↔ Layout Conversion
// =============================================================================

// FromGraph converts builder output into a Layout. UnitX and UnitY are left
// for the caller to record.
func FromGraph(g lineage.Graph) Layout {
	l := Layout{
		VizType:  VizTypeNodelink,
		EntityID: g.Focal().Entity.ID,
		Focal:    g.Focal().ID,
		Nodes:    make([]Node, len(g.Nodes)),
		Edges:    make([]Edge, len(g.Edges)),
		Rows:     make(map[int][]string, len(g.Rows)),
	}
	for _, row := range g.Rows {
		l.Rows[row.Depth] = slices.Clone(row.NodeIDs)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, n := range g.Nodes {
		l.Nodes[i] = Node{
			ID:       n.ID,
			EntityID: n.Entity.ID,
			Label:    n.Label(),
			Name:     n.Entity.Name,
			Type:     n.Entity.Type,
			X:        n.X,
			Y:        n.Y,
			Depth:    n.Depth,
			Slot:     n.Slot,
			Role:     string(n.Role),
			Core:     n.Core,
			Weight:   n.Weight,
		}
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	if len(g.Nodes) > 0 {
		l.MinX, l.MinY = minX, minY
		l.Width, l.Height = maxX-minX, maxY-minY
	}

	for i, e := range g.Edges {
		l.Edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	return l
}

// EmptyLayout is the layout of a record without lineage.
func EmptyLayout(entity lineage.EntityReference) Layout {
	return Layout{
		VizType:  VizTypeNodelink,
		EntityID: entity.ID,
		Empty:    true,
		Message:  EmptyMessage,
	}
}

// ToGraph rebuilds a lineage.Graph from the layout. Entity references carry
// only the fields the layout keeps (ID, name, type).
func (l *Layout) ToGraph() lineage.Graph {
	g := lineage.Graph{
		Nodes: make([]lineage.Node, len(l.Nodes)),
		Edges: make([]lineage.RenderedEdge, len(l.Edges)),
	}
	for i, n := range l.Nodes {
		g.Nodes[i] = lineage.Node{
			ID:     n.ID,
			Entity: lineage.EntityReference{ID: n.EntityID, Name: n.Name, Type: n.Type},
			Depth:  n.Depth,
			Slot:   n.Slot,
			X:      n.X,
			Y:      n.Y,
			Role:   lineage.Role(n.Role),
			Core:   n.Core,
			Weight: n.Weight,
		}
	}
	for i, e := range l.Edges {
		g.Edges[i] = lineage.RenderedEdge{ID: e.ID, Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	for _, depth := range slices.Sorted(maps.Keys(l.Rows)) {
		g.Rows = append(g.Rows, lineage.Row{Depth: depth, NodeIDs: slices.Clone(l.Rows[depth])})
	}
	return g
}

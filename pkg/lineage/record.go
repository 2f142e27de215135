package lineage

import (
	"errors"
	"strings"
)

var (
	// ErrNoLineage is returned by [Builder.Build] when the record carries no
	// upstream and no downstream edges. Callers render a "no lineage data"
	// state instead of an empty graph.
	ErrNoLineage = errors.New("no lineage data")

	// ErrMissingFocalEntity is returned when a record has no focal entity ID.
	ErrMissingFocalEntity = errors.New("lineage record has no focal entity")

	// ErrUnknownNode is returned by [Selection.Select] for node IDs that are
	// not part of the current graph.
	ErrUnknownNode = errors.New("unknown lineage node")
)

// Direction selects one of the two edge sets of a record.
type Direction int

const (
	// Upstream walks backward: edges are anchored at their target.
	Upstream Direction = iota
	// Downstream walks forward: edges are anchored at their source.
	Downstream
)

// String returns "upstream" or "downstream".
func (d Direction) String() string {
	if d == Upstream {
		return "upstream"
	}
	return "downstream"
}

// EntityReference identifies a catalog entity (table, topic, dashboard,
// pipeline). Identity is ID.
type EntityReference struct {
	ID                 string `json:"id" bson:"id"`
	Name               string `json:"name,omitempty" bson:"name,omitempty"`
	Type               string `json:"type,omitempty" bson:"type,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName,omitempty" bson:"fully_qualified_name,omitempty"`
	DisplayName        string `json:"displayName,omitempty" bson:"display_name,omitempty"`
}

// Label returns the last dot-separated segment of the entity name, falling
// back to the ID when the name is empty.
func (e EntityReference) Label() string {
	if e.Name == "" {
		return e.ID
	}
	return e.Name[strings.LastIndex(e.Name, ".")+1:]
}

// Edge is a directed lineage relationship between two entity IDs.
// Weight is optional; join neighborhoods use it for join counts.
type Edge struct {
	FromEntity string `json:"fromEntity" bson:"from_entity"`
	ToEntity   string `json:"toEntity" bson:"to_entity"`
	Weight     int    `json:"weight,omitempty" bson:"weight,omitempty"`
}

// Record is one lineage response from the catalog: a focal entity, the
// directory of entities reachable from it, and edges already partitioned
// into upstream and downstream sets.
type Record struct {
	Entity          EntityReference   `json:"entity" bson:"entity"`
	Nodes           []EntityReference `json:"nodes,omitempty" bson:"nodes,omitempty"`
	UpstreamEdges   []Edge            `json:"upstreamEdges,omitempty" bson:"upstream_edges,omitempty"`
	DownstreamEdges []Edge            `json:"downstreamEdges,omitempty" bson:"downstream_edges,omitempty"`
}

// HasLineage reports whether the record carries at least one edge.
func (r Record) HasLineage() bool {
	return len(r.UpstreamEdges) > 0 || len(r.DownstreamEdges) > 0
}

// Validate checks the record can be laid out.
func (r Record) Validate() error {
	if r.Entity.ID == "" {
		return ErrMissingFocalEntity
	}
	return nil
}

// Edges returns the edge set for the given direction.
func (r Record) Edges(d Direction) []Edge {
	if d == Upstream {
		return r.UpstreamEdges
	}
	return r.DownstreamEdges
}

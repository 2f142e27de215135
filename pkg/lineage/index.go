package lineage

// traversalEdge is an edge plus its consumption flag.
type traversalEdge struct {
	Edge
	mapped bool
}

// Neighbor is an entity reached by consuming one edge.
type Neighbor struct {
	Entity EntityReference
	Edge   int // position of the consumed edge in its direction's arena
	Weight int
}

// EdgeIndex owns the working copy of a record's edges for one traversal.
// All traversal edges live in two arenas (upstream, downstream) indexed by
// position; an edge is consumed at most once.
//
// An EdgeIndex is single-use: build a new one per traversal.
type EdgeIndex struct {
	nodes map[string]EntityReference
	sets  [2][]traversalEdge
}

// NewEdgeIndex partitions the record's edges into unmapped working sets.
// When the node directory repeats an ID, the first entry wins.
func NewEdgeIndex(r Record) *EdgeIndex {
	x := &EdgeIndex{nodes: make(map[string]EntityReference, len(r.Nodes))}
	for _, n := range r.Nodes {
		if _, ok := x.nodes[n.ID]; !ok {
			x.nodes[n.ID] = n
		}
	}
	for _, d := range []Direction{Upstream, Downstream} {
		src := r.Edges(d)
		set := make([]traversalEdge, len(src))
		for i, e := range src {
			set[i] = traversalEdge{Edge: e}
		}
		x.sets[d] = set
	}
	return x
}

// anchor is the endpoint an edge is expanded from.
func anchor(d Direction, e Edge) string {
	if d == Upstream {
		return e.ToEntity
	}
	return e.FromEntity
}

// far is the endpoint an edge leads to.
func far(d Direction, e Edge) string {
	if d == Upstream {
		return e.FromEntity
	}
	return e.ToEntity
}

// ConsumeEdgesInto marks every unmapped edge anchored at entityID as mapped
// and returns the neighbors those edges lead to, in edge order. Edges whose
// neighbor is missing from the node directory are consumed but yield nothing.
func (x *EdgeIndex) ConsumeEdgesInto(entityID string, d Direction) []Neighbor {
	var out []Neighbor
	set := x.sets[d]
	for i := range set {
		e := &set[i]
		if e.mapped || anchor(d, e.Edge) != entityID {
			continue
		}
		e.mapped = true
		ref, ok := x.nodes[far(d, e.Edge)]
		if !ok {
			continue
		}
		out = append(out, Neighbor{Entity: ref, Edge: i, Weight: e.Weight})
	}
	return out
}

// HasUnmapped reports whether entityID still anchors an unconsumed edge.
func (x *EdgeIndex) HasUnmapped(entityID string, d Direction) bool {
	for _, e := range x.sets[d] {
		if !e.mapped && anchor(d, e.Edge) == entityID {
			return true
		}
	}
	return false
}

// Resolve looks up an entity in the node directory.
func (x *EdgeIndex) Resolve(id string) (EntityReference, bool) {
	ref, ok := x.nodes[id]
	return ref, ok
}

// Len returns the number of edges in the direction's arena.
func (x *EdgeIndex) Len(d Direction) int { return len(x.sets[d]) }

// Edge returns the i-th edge of the direction's arena.
func (x *EdgeIndex) Edge(d Direction, i int) Edge { return x.sets[d][i].Edge }

// Mapped reports whether the i-th edge of the direction's arena was consumed.
func (x *EdgeIndex) Mapped(d Direction, i int) bool { return x.sets[d][i].mapped }

// MappedCount returns how many edges of the direction were consumed.
func (x *EdgeIndex) MappedCount(d Direction) int {
	n := 0
	for _, e := range x.sets[d] {
		if e.mapped {
			n++
		}
	}
	return n
}

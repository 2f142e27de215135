package lineage

// FocalParent is the Parent value of placements expanded directly from the
// focal entity.
const FocalParent = -1

// Placement is one discovered occurrence of an entity. The same entity can
// be placed several times when it is reachable through several paths.
type Placement struct {
	Entity EntityReference
	Depth  int // signed: negative upstream, positive downstream
	Slot   int // 0-based discovery order within Depth
	Parent int // index of the placement it was expanded from, or FocalParent
	Edge   int // arena index of the consumed edge
	Weight int
}

// Layers holds the placements for both directions in discovery order.
type Layers struct {
	Upstream   []Placement
	Downstream []Placement
}

// Placements returns the placements for the given direction.
func (l Layers) Placements(d Direction) []Placement {
	if d == Upstream {
		return l.Upstream
	}
	return l.Downstream
}

// AssignLayers expands outward from the focal entity in both directions,
// consuming edges from idx. Each direction is walked independently and
// starts at depth 1 (upstream depths are stored negated).
func AssignLayers(idx *EdgeIndex, focal EntityReference) Layers {
	return Layers{
		Upstream:   newAssigner(idx, Upstream).run(focal.ID),
		Downstream: newAssigner(idx, Downstream).run(focal.ID),
	}
}

type assigner struct {
	idx    *EdgeIndex
	dir    Direction
	placed []Placement
	slots  map[int]int // unsigned depth -> next slot
}

func newAssigner(idx *EdgeIndex, d Direction) *assigner {
	return &assigner{idx: idx, dir: d, slots: make(map[int]int)}
}

// frame is one pending expansion on the worklist: the placements it
// discovered and how many of them have been visited.
type frame struct {
	children []int
	next     int
	depth    int
}

// run walks depth-first: after a node is expanded, each freshly discovered
// neighbor is expanded in turn (together with its whole subtree) before the
// next sibling, and only if it still anchors an unconsumed edge at the time
// it is visited.
func (a *assigner) run(focalID string) []Placement {
	stack := []frame{{children: a.expand(FocalParent, focalID, 1), depth: 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.children[top.next]
		top.next++
		depth := top.depth + 1

		id := a.placed[child].Entity.ID
		if a.idx.HasUnmapped(id, a.dir) {
			stack = append(stack, frame{children: a.expand(child, id, depth), depth: depth})
		}
	}
	return a.placed
}

// expand consumes the edges anchored at entityID and places each resolved
// neighbor at depth with the next free slot.
func (a *assigner) expand(parent int, entityID string, depth int) []int {
	neighbors := a.idx.ConsumeEdgesInto(entityID, a.dir)
	fresh := make([]int, 0, len(neighbors))
	signed := depth
	if a.dir == Upstream {
		signed = -depth
	}
	for _, n := range neighbors {
		a.placed = append(a.placed, Placement{
			Entity: n.Entity,
			Depth:  signed,
			Slot:   a.slots[depth],
			Parent: parent,
			Edge:   n.Edge,
			Weight: n.Weight,
		})
		a.slots[depth]++
		fresh = append(fresh, len(a.placed)-1)
	}
	return fresh
}

// Package lineage lays out catalog lineage graphs around a focal entity.
//
// A [Record] carries a focal entity, a directory of reachable entities and
// two edge lists, upstream and downstream, already partitioned by the
// catalog. The layout pipeline is:
//
//  1. [EdgeIndex]: per-traversal working copy of the edges. Every edge is
//     consumed at most once, which bounds the walk on cyclic and
//     re-converging graphs.
//  2. [AssignLayers]: walks outward from the focal entity in each direction
//     independently and gives every discovered entity a signed depth and a
//     slot (its discovery order among nodes at the same depth).
//  3. [Builder]: turns placements into positioned [Node] instances and
//     [RenderedEdge] records and classifies connector roles.
//
// An entity reachable through several paths is placed once per path. In a
// diamond a→b, a→c, b→d, c→d the entity d appears twice at depth 2, in
// slots 0 and 1.
//
// # Coordinates
//
// The focal entity sits at the origin. A node at signed depth d and slot s
// is placed at x = d*2*UnitX, y = s*UnitY (defaults 150 and 60).
//
// # Empty records
//
// A record with neither upstream nor downstream edges yields [ErrNoLineage].
// Edges naming entities missing from the directory are dropped silently.
//
// # Selection
//
// [Selection] tracks the node highlighted in the detail panel. It is
// independent of layout and is reset whenever a new record replaces the
// graph.
package lineage

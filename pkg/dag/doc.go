// Package dag provides a small row-layered directed graph.
//
// The lineage builder places every rendered node instance on a row equal to
// its signed depth: upstream layers get negative rows, the focal entity sits
// on row 0 and downstream layers get positive rows. Every rendered edge must
// then connect consecutive rows, which [DAG.Validate] enforces.
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "node-orders-u1", Row: -1})
//	g.AddNode(dag.Node{ID: "node-sales-0", Row: 0})
//	g.AddEdge(dag.Edge{From: "node-orders-u1", To: "node-sales-0"})
//	err := g.Validate() // nil
//
// Node and edge order is insertion order, so callers get deterministic
// output without sorting.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
package dag

// Package pkg provides the libraries behind the lineage CLI and API.
//
// # Overview
//
// Lineage lays out the upstream and downstream neighborhood of one catalog
// entity as a left-to-right node-link diagram. The pkg directory is organized
// into these areas:
//
//  1. [lineage] - Domain logic (edge index, layer assignment, graph builder,
//     selection state)
//  2. [dag] - Layered DAG used to check the rendered graph
//  3. [graph] - Serialization types for records and layouts
//  4. [render] - DOT, SVG and PNG output
//  5. [pipeline] - Orchestration (record → layout → render) with caching
//  6. [cache], [store], [session] - Infrastructure
//  7. [entity], [directory], [joins] - Entity detail panel support
//
// # Architecture
//
// The typical data flow:
//
//	Catalog lineage record (JSON)
//	         ↓
//	    [graph] package (decode + validate)
//	         ↓
//	    [lineage] package (edge index → layers → positioned graph)
//	         ↓
//	    [render/nodelink] package (DOT → SVG/PNG)
//
// # Quick Start
//
//	rec, _ := graph.ReadRecordFile("orders.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(ctx, rec, pipeline.Options{Formats: []string{"svg"}})
//	os.WriteFile("orders.svg", res.Artifacts["svg"], 0644)
//
// [lineage]: github.com/matzehuels/lineage/pkg/lineage
// [dag]: github.com/matzehuels/lineage/pkg/dag
// [graph]: github.com/matzehuels/lineage/pkg/graph
// [render]: github.com/matzehuels/lineage/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/lineage/pkg/pipeline
// [cache]: github.com/matzehuels/lineage/pkg/cache
// [store]: github.com/matzehuels/lineage/pkg/store
// [session]: github.com/matzehuels/lineage/pkg/session
// [entity]: github.com/matzehuels/lineage/pkg/entity
// [directory]: github.com/matzehuels/lineage/pkg/directory
// [joins]: github.com/matzehuels/lineage/pkg/joins
package pkg

// Package graph provides the serialization formats for lineage records and
// laid-out lineage graphs.
//
// This package is the wire boundary of the module: record files read by the
// CLI, request and response bodies of the HTTP API, cache entries and Mongo
// documents all go through the types defined here.
//
// # Records
//
// Records use the catalog's camelCase shape:
//
//	{
//	  "entity": {"id": "t0", "name": "shop.public.orders", "type": "table"},
//	  "nodes": [{"id": "u1", "name": "shop.raw.orders", "type": "table"}],
//	  "upstreamEdges": [{"fromEntity": "u1", "toEntity": "t0"}],
//	  "downstreamEdges": []
//	}
//
// Use [ReadRecordFile], [ReadRecord] and [MarshalRecord] to move records in
// and out of [lineage.Record].
//
// # Layouts
//
// A [Layout] is a positioned graph: one [Node] per placed entity instance
// with pixel coordinates, one [Edge] per rendered connection, and a row index
// keyed by signed depth. Records without any edges produce a layout with
// Empty set and no nodes, so callers can show the "no lineage" state without
// treating it as a failure.
//
//	l := graph.FromGraph(g)
//	data, _ := graph.MarshalLayout(l)
//	back, _ := graph.UnmarshalLayout(data)
//	g2 := back.ToGraph()
//
// # Concurrency
//
// All functions are safe for concurrent use. Layout values are not
// synchronized.
package graph

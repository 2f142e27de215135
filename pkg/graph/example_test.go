package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

func ExampleReadRecord() {
	data := `{
		"entity": {"id": "t0", "name": "shop.public.orders", "type": "table"},
		"nodes": [{"id": "d1", "name": "shop.mart.daily", "type": "table"}],
		"downstreamEdges": [{"fromEntity": "t0", "toEntity": "d1"}]
	}`
	r, err := graph.ReadRecord(strings.NewReader(data))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(r.Entity.Label(), len(r.Nodes), len(r.DownstreamEdges))
	// Output: orders 1 1
}

func ExampleFromGraph() {
	g, _ := lineage.Build(lineage.Record{
		Entity:          lineage.EntityReference{ID: "t0", Name: "orders"},
		Nodes:           []lineage.EntityReference{{ID: "d1", Name: "daily"}},
		DownstreamEdges: []lineage.Edge{{FromEntity: "t0", ToEntity: "d1"}},
	})
	l := graph.FromGraph(g)
	for _, row := range g.Rows {
		fmt.Println(row.Depth, l.Rows[row.Depth])
	}
	// Output:
	// 0 [node-t0-0]
	// 1 [node-d1-d1]
}

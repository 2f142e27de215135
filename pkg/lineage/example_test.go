package lineage_test

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/lineage"
)

func ExampleBuild() {
	r := lineage.Record{
		Entity: lineage.EntityReference{ID: "orders", Name: "shop.public.orders"},
		Nodes: []lineage.EntityReference{
			{ID: "raw", Name: "shop.raw.orders_raw"},
			{ID: "daily", Name: "shop.mart.daily_sales"},
		},
		UpstreamEdges:   []lineage.Edge{{FromEntity: "raw", ToEntity: "orders"}},
		DownstreamEdges: []lineage.Edge{{FromEntity: "orders", ToEntity: "daily"}},
	}

	g, err := lineage.Build(r)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range g.Nodes {
		fmt.Printf("%-12s depth=%2d x=%4.0f role=%s\n", n.Label(), n.Depth, n.X, n.Role)
	}
	// Output:
	// orders       depth= 0 x=   0 role=default
	// orders_raw   depth=-1 x=-300 role=input
	// daily_sales  depth= 1 x= 300 role=output
}

func ExampleBuild_noLineage() {
	_, err := lineage.Build(lineage.Record{Entity: lineage.EntityReference{ID: "orders"}})
	fmt.Println(err)
	// Output: no lineage data
}

func ExampleSelection() {
	g, _ := lineage.Build(lineage.Record{
		Entity:          lineage.EntityReference{ID: "a", Name: "a", Type: "table"},
		Nodes:           []lineage.EntityReference{{ID: "b", Name: "b", Type: "topic"}},
		DownstreamEdges: []lineage.Edge{{FromEntity: "a", ToEntity: "b"}},
	})
	sel := lineage.NewSelection(g, func(open bool, n lineage.SelectedNode) {
		fmt.Println(open, n.ID, n.Type)
	})
	sel.Select("node-b-d1")
	sel.Close()
	// Output:
	// true node-b-d1 topic
	// false node-b-d1 topic
}

package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

func sampleLayout(t *testing.T) graph.Layout {
	t.Helper()
	g, err := lineage.Build(lineage.Record{
		Entity: lineage.EntityReference{ID: "t0", Name: "shop.orders", Type: "table"},
		Nodes: []lineage.EntityReference{
			{ID: "u1", Name: "shop.raw", Type: "table"},
			{ID: "d1", Name: "shop.daily", Type: "table"},
		},
		UpstreamEdges:   []lineage.Edge{{FromEntity: "u1", ToEntity: "t0"}},
		DownstreamEdges: []lineage.Edge{{FromEntity: "t0", ToEntity: "d1", Weight: 4}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return graph.FromGraph(g)
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"node-u1-u1" [label="raw", pos="-300,0!"`,
		`"node-d1-d1" [label="daily", pos="300,0!"`,
		`"node-u1-u1" -> "node-t0-0";`,
		`"node-t0-0" -> "node-d1-d1" [label="4"];`,
		"penwidth=2.5",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "#fff59d") {
		t.Error("no node should be highlighted without a selection")
	}
}

func TestToDOTInvertsY(t *testing.T) {
	l := graph.Layout{
		VizType: graph.VizTypeNodelink,
		Focal:   "a",
		Nodes: []graph.Node{
			{ID: "a", Label: "a", Role: "output", Core: true},
			{ID: "b", Label: "b", X: 300, Y: 60, Role: "output"},
		},
	}
	if dot := ToDOT(l, Options{}); !strings.Contains(dot, `pos="300,-60!"`) {
		t.Errorf("expected inverted y:\n%s", dot)
	}
}

func TestToDOTSelected(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{Selected: "node-d1-d1"})
	var line string
	for _, l := range strings.Split(dot, "\n") {
		if strings.Contains(l, `"node-d1-d1" [`) {
			line = l
		}
	}
	if !strings.Contains(line, "#fff59d") {
		t.Errorf("selected node not highlighted: %s", line)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{Detailed: true})
	if !strings.Contains(dot, `raw\ntable · depth -1`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(graph.EmptyLayout(lineage.EntityReference{ID: "t0"}), Options{})
	if !strings.Contains(dot, graph.EmptyMessage) {
		t.Errorf("empty layout should render the empty caption:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Rewrites",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "NoViewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "ZeroSize",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

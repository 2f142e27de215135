package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/lineage/pkg/lineage"
)

func sampleRecord() lineage.Record {
	return lineage.Record{
		Entity: lineage.EntityReference{ID: "t0", Name: "shop.public.orders", Type: "table"},
		Nodes: []lineage.EntityReference{
			{ID: "u1", Name: "shop.raw.orders", Type: "table"},
			{ID: "d1", Name: "shop.mart.daily", Type: "table"},
			{ID: "d2", Name: "sales_dashboard", Type: "dashboard"},
		},
		UpstreamEdges: []lineage.Edge{{FromEntity: "u1", ToEntity: "t0"}},
		DownstreamEdges: []lineage.Edge{
			{FromEntity: "t0", ToEntity: "d1"},
			{FromEntity: "t0", ToEntity: "d2", Weight: 3},
		},
	}
}

func sampleGraph(t *testing.T) lineage.Graph {
	t.Helper()
	g, err := lineage.Build(sampleRecord())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestFromGraph(t *testing.T) {
	l := FromGraph(sampleGraph(t))

	if l.VizType != VizTypeNodelink {
		t.Errorf("VizType = %q", l.VizType)
	}
	if l.EntityID != "t0" || l.Focal != "node-t0-0" {
		t.Errorf("EntityID/Focal = %q/%q", l.EntityID, l.Focal)
	}
	if len(l.Nodes) != 4 || len(l.Edges) != 3 {
		t.Fatalf("got %d nodes %d edges, want 4/3", len(l.Nodes), len(l.Edges))
	}

	wantRows := map[int][]string{
		-1: {"node-u1-u1"},
		0:  {"node-t0-0"},
		1:  {"node-d1-d1", "node-d2-d1"},
	}
	if diff := cmp.Diff(wantRows, l.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}

	if l.MinX != -300 || l.MinY != 0 || l.Width != 600 || l.Height != 60 {
		t.Errorf("bounds = (%v,%v) %vx%v", l.MinX, l.MinY, l.Width, l.Height)
	}

	d2, ok := l.Node("node-d2-d1")
	if !ok {
		t.Fatal("node-d2-d1 missing")
	}
	want := Node{
		ID: "node-d2-d1", EntityID: "d2", Label: "sales_dashboard", Name: "sales_dashboard",
		Type: "dashboard", X: 300, Y: 60, Depth: 1, Slot: 1, Role: "output", Weight: 3,
	}
	if diff := cmp.Diff(want, d2); diff != "" {
		t.Errorf("node mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	l := FromGraph(g)
	l.UnitX, l.UnitY = 150, 60

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if diff := cmp.Diff(l, back); diff != "" {
		t.Errorf("layout changed (-want +got):\n%s", diff)
	}

	// ToGraph keeps everything the selection state needs.
	rebuilt := back.ToGraph()
	if rebuilt.Focal().ID != g.Focal().ID {
		t.Errorf("focal = %q, want %q", rebuilt.Focal().ID, g.Focal().ID)
	}
	for i, n := range g.Nodes {
		if rebuilt.Nodes[i].Selected() != n.Selected() {
			t.Errorf("node %d selection payload = %+v, want %+v", i, rebuilt.Nodes[i].Selected(), n.Selected())
		}
	}
	if diff := cmp.Diff(g.Rows, rebuilt.Rows); diff != "" {
		t.Errorf("rows changed (-want +got):\n%s", diff)
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"BadJSON", `{`, "unmarshal layout"},
		{"NoNodes", `{"viz_type":"nodelink","entity_id":"t0"}`, "must contain nodes"},
		{"UnknownVizType", `{"viz_type":"tower"}`, "unsupported viz type"},
		{"MissingFocal", `{"focal":"x","nodes":[{"id":"a"}]}`, "focal node"},
		{"DuplicateNode", `{"focal":"a","nodes":[{"id":"a"},{"id":"a"}]}`, "duplicate node"},
		{"DanglingEdge", `{"focal":"a","nodes":[{"id":"a"}],"edges":[{"id":"e","source":"a","target":"b"}]}`, "unknown node"},
		{"EmptyWithNodes", `{"empty":true,"nodes":[{"id":"a"}]}`, "must not contain nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyLayout(t *testing.T) {
	l := EmptyLayout(lineage.EntityReference{ID: "t0"})
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !back.Empty || back.Message != EmptyMessage || back.EntityID != "t0" {
		t.Errorf("empty layout = %+v", back)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := FromGraph(sampleGraph(t))
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	back, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(back.Nodes) != len(l.Nodes) {
		t.Errorf("nodes = %d, want %d", len(back.Nodes), len(l.Nodes))
	}

	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	r := sampleRecord()
	data, err := MarshalRecord(r)
	if err != nil {
		t.Fatalf("MarshalRecord: %v", err)
	}
	if !strings.Contains(string(data), `"upstreamEdges"`) || !strings.Contains(string(data), `"fromEntity"`) {
		t.Errorf("record JSON not camelCase:\n%s", data)
	}
	back, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord: %v", err)
	}
	if diff := cmp.Diff(r, back); diff != "" {
		t.Errorf("record changed (-want +got):\n%s", diff)
	}
}

func TestReadRecordFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	if err := WriteRecordFile(sampleRecord(), good); err != nil {
		t.Fatalf("WriteRecordFile: %v", err)
	}
	if _, err := ReadRecordFile(good); err != nil {
		t.Errorf("ReadRecordFile: %v", err)
	}

	noFocal := filepath.Join(dir, "nofocal.json")
	os.WriteFile(noFocal, []byte(`{"nodes":[]}`), 0644)
	if _, err := ReadRecordFile(noFocal); err != lineage.ErrMissingFocalEntity {
		t.Errorf("error = %v, want ErrMissingFocalEntity", err)
	}
}

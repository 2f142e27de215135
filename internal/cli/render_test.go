package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

const ordersRecord = `{
  "entity": {"id": "orders", "name": "shop.public.orders", "type": "table"},
  "nodes": [
    {"id": "raw", "name": "shop.raw.orders", "type": "table"},
    {"id": "daily", "name": "shop.mart.daily_orders", "type": "table"}
  ],
  "upstreamEdges": [{"fromEntity": "raw", "toEntity": "orders"}],
  "downstreamEdges": [{"fromEntity": "orders", "toEntity": "daily"}]
}`

// testEnv writes a config that disables caching and returns its path with
// a temp directory for inputs and outputs.
func testEnv(t *testing.T) (configPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	writeFile(t, configPath, "[cache]\nbackend = \"none\"\n")
	return configPath, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,png,dot", []string{"svg", "png", "dot"}},
		{"spaces and case", " SVG , dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived", "", []string{"svg"}, map[string]string{"svg": "orders.svg"}},
		{"explicit single", "out.svg", []string{"svg"}, map[string]string{"svg": "out.svg"}},
		{"json never overwrites record", "", []string{"json"}, map[string]string{"json": "orders.layout.json"}},
		{
			"multiple with base", "out/g.svg", []string{"svg", "dot"},
			map[string]string{"svg": "out/g.svg", "dot": "out/g.dot"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "orders.json", tt.formats)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputPaths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadLayoutAcceptsRecordOrLayout(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "orders.json")
	writeFile(t, recPath, ordersRecord)

	runner := pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	ctx := context.Background()

	fromRecord, fromFile, err := loadLayout(ctx, runner, recPath, pipeline.Options{})
	if err != nil {
		t.Fatalf("loadLayout(record): %v", err)
	}
	if fromFile {
		t.Error("record input reported as a layout file")
	}
	if fromRecord.Focal != "node-orders-0" || len(fromRecord.Nodes) != 3 {
		t.Fatalf("layout from record = %+v", fromRecord)
	}

	layoutPath := filepath.Join(dir, "orders.layout.json")
	if err := graph.WriteLayoutFile(fromRecord, layoutPath); err != nil {
		t.Fatal(err)
	}
	fromLayout, fromFile, err := loadLayout(ctx, runner, layoutPath, pipeline.Options{})
	if err != nil {
		t.Fatalf("loadLayout(layout): %v", err)
	}
	if !fromFile {
		t.Error("layout input not recognized")
	}
	if diff := cmp.Diff(fromRecord, fromLayout); diff != "" {
		t.Errorf("layout round trip mismatch (-want +got):\n%s", diff)
	}

	garbage := filepath.Join(dir, "garbage.json")
	writeFile(t, garbage, `{"nodes": 3}`)
	if _, _, err := loadLayout(ctx, runner, garbage, pipeline.Options{}); err == nil {
		t.Error("expected error for input that is neither layout nor record")
	}
}

func TestLayoutCommand(t *testing.T) {
	cfg, dir := testEnv(t)
	recPath := filepath.Join(dir, "orders.json")
	writeFile(t, recPath, ordersRecord)

	if err := runCLI(t, "--config", cfg, "layout", recPath, "--unit-x", "10", "--unit-y", "5"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(filepath.Join(dir, "orders.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	daily, ok := l.Node("node-daily-d1")
	if !ok {
		t.Fatalf("node-daily-d1 missing from %v", l.Nodes)
	}
	if daily.X != 20 {
		t.Errorf("daily.X = %v, want 20 with unit-x 10", daily.X)
	}
}

func TestLayoutCommandEmptyRecord(t *testing.T) {
	cfg, dir := testEnv(t)
	recPath := filepath.Join(dir, "lonely.json")
	writeFile(t, recPath, `{"entity": {"id": "lonely"}}`)
	out := filepath.Join(dir, "out.json")

	if err := runCLI(t, "--config", cfg, "layout", recPath, "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !l.Empty {
		t.Errorf("layout of a record without edges should be empty: %+v", l)
	}
}

func TestRenderCommand(t *testing.T) {
	cfg, dir := testEnv(t)
	recPath := filepath.Join(dir, "orders.json")
	writeFile(t, recPath, ordersRecord)

	err := runCLI(t, "--config", cfg, "render", recPath, "-f", "dot,json", "--select", "node-raw-u1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "orders.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph") || !strings.Contains(string(dot), "#fff59d") {
		t.Errorf("unexpected DOT output:\n%s", dot)
	}
	if _, err := graph.ReadLayoutFile(filepath.Join(dir, "orders.layout.json")); err != nil {
		t.Errorf("json artifact: %v", err)
	}
	rec, err := os.ReadFile(recPath)
	if err != nil || string(rec) != ordersRecord {
		t.Error("record input was modified")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	cfg, dir := testEnv(t)
	recPath := filepath.Join(dir, "orders.json")
	writeFile(t, recPath, ordersRecord)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", recPath, "-f", "pdf"}},
		{"bad select", []string{"render", recPath, "-f", "dot", "--select", "raw"}},
		{"unknown select", []string{"render", recPath, "-f", "dot", "--select", "node-ghost-0"}},
		{"missing input", []string{"render", filepath.Join(dir, "nope.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, append([]string{"--config", cfg}, tt.args...)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnknownConfigKeyFails(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	writeFile(t, cfg, "[cache]\nbakend = \"none\"\n")
	if err := runCLI(t, "--config", cfg, "cache", "path"); err == nil {
		t.Error("expected error for misspelled config key")
	}
}

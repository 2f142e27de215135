package cli

import (
	"bytes"
	"context"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/directory"
	"github.com/matzehuels/lineage/pkg/entity"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/joins"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"layout", "render", "browse", "joins", "info", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug logged at info level")
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if buf.Len() == 0 {
		t.Error("debug not logged after SetLogLevel(LogDebug)")
	}
}

func TestSparkline(t *testing.T) {
	points := []entity.ChartPoint{{Value: 10}, {Value: 20}, {Value: 30}}
	if got := sparkline(points); got != "▁▄█" {
		t.Errorf("sparkline = %q, want ▁▄█", got)
	}
	if got := sparkline([]entity.ChartPoint{{Value: 5}, {Value: 5}}); got != "▁▁" {
		t.Errorf("flat sparkline = %q", got)
	}
	if sparkline(nil) != "" {
		t.Error("empty series should render nothing")
	}
}

func TestLayoutSpan(t *testing.T) {
	tests := []struct {
		name     string
		rows     map[int][]string
		up, down int
	}{
		{"Empty", nil, 0, 0},
		{"FocalOnly", map[int][]string{0: {"node-t0-0"}}, 0, 0},
		{"BothSides", map[int][]string{-2: {"a"}, -1: {"b"}, 0: {"c"}, 1: {"d"}}, 2, 1},
		{"DownstreamOnly", map[int][]string{0: {"c"}, 1: {"d"}, 2: {"e"}, 3: {"f"}}, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := layoutSpan(graph.Layout{Rows: tt.rows})
			if up != tt.up || down != tt.down {
				t.Errorf("layoutSpan = %d up %d down, want %d/%d", up, down, tt.up, tt.down)
			}
		})
	}
}

func TestRoleStyle(t *testing.T) {
	if !roleStyle(lineage.RoleOutput, true).GetBold() {
		t.Error("focal role should be bold")
	}
	if roleStyle(lineage.RoleInput, false).GetBold() {
		t.Error("non-focal role should not be bold")
	}
	if roleStyle(lineage.RoleInput, false).GetForeground() != colorGreen {
		t.Error("input role should be green")
	}
	if roleStyle("unknown", false).GetForeground() != colorGray {
		t.Error("unknown role should fall back to gray")
	}
}

func TestExampleInputs(t *testing.T) {
	ctx := context.Background()
	runner := pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))

	l, _, err := loadLayout(ctx, runner, "../../examples/orders.json", pipeline.Options{})
	if err != nil {
		t.Fatalf("examples/orders.json: %v", err)
	}
	if l.Empty || l.Focal != "node-c1f3-0" {
		t.Errorf("example layout focal = %q, empty = %v", l.Focal, l.Empty)
	}

	report, err := readJoins("../../examples/orders.joins.json")
	if err != nil {
		t.Fatal(err)
	}
	if tables := joins.FrequentlyJoined(report.ColumnJoins); tables[0].Name != "shop.payments" || tables[0].JoinCount != 970 {
		t.Errorf("top joined table = %+v", tables[0])
	}

	d, err := readDetails("../../examples/orders.details.json")
	if err != nil {
		t.Fatal(err)
	}
	dir, err := directory.LoadFile("../../examples/directory.toml")
	if err != nil {
		t.Fatal(err)
	}
	if !entity.CanEdit(dir, d.OwnerID, "u-ada") || entity.CanEdit(dir, d.OwnerID, "u-bob") {
		t.Error("example directory membership not applied")
	}
	if got := entity.UsagePercentile(d.Usage.PercentileRank); got != "High - 95th pctile" {
		t.Errorf("usage = %q", got)
	}
}

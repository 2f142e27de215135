package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/lineage/pkg/directory"
)

func TestTier(t *testing.T) {
	tests := []struct {
		tags     []string
		wantTier string
		wantRest []string
	}{
		{[]string{"PII.Sensitive", "Tier.Tier2"}, "Tier.Tier2", []string{"PII.Sensitive"}},
		{[]string{"Tier.TierX", "Tier.Tier1", "Tier.Tier3"}, "Tier.Tier1", []string{"Tier.TierX"}},
		{[]string{"Tier.Tier 4"}, "Tier.Tier 4", []string{}},
		{nil, "", []string{}},
	}
	for _, tt := range tests {
		if got := Tier(tt.tags); got != tt.wantTier {
			t.Errorf("Tier(%v) = %q, want %q", tt.tags, got, tt.wantTier)
		}
		if diff := cmp.Diff(tt.wantRest, TagsWithoutTier(tt.tags)); diff != "" {
			t.Errorf("TagsWithoutTier(%v) (-want +got):\n%s", tt.tags, diff)
		}
	}
	if got := TierLabel("Tier.Tier2"); got != "Tier2" {
		t.Errorf("TierLabel = %q", got)
	}
	if got := TierLabel(""); got != "" {
		t.Errorf("TierLabel(\"\") = %q", got)
	}
}

func TestUsagePercentile(t *testing.T) {
	tests := []struct {
		rank float64
		want string
	}{
		{95.34, "High - 95th pctile"},
		{75, "Medium - 75th pctile"},
		{75.04, "Medium - 75th pctile"},
		{75.06, "High - 75th pctile"},
		{25, "Medium - 25th pctile"},
		{22.5, "Low - 23rd pctile"},
		{1, "Low - 1st pctile"},
		{12, "Low - 12th pctile"},
		{0, "Low - 0th pctile"},
	}
	for _, tt := range tests {
		if got := UsagePercentile(tt.rank); got != tt.want {
			t.Errorf("UsagePercentile(%v) = %q, want %q", tt.rank, got, tt.want)
		}
	}
}

func TestLinkAndIcon(t *testing.T) {
	tests := []struct {
		typ, link, icon string
	}{
		{"table", "/dataset/db.orders", "table"},
		{"topic", "/topic/db.orders", "topic"},
		{"topic_search_index", "/topic/db.orders", "topic"},
		{"Dashboard", "/dashboard/db.orders", "dashboard"},
		{"pipeline", "/pipeline/db.orders", "pipeline"},
		{"chart", "/dataset/db.orders", "table"},
	}
	for _, tt := range tests {
		if got := Link(tt.typ, "db.orders"); got != tt.link {
			t.Errorf("Link(%q) = %q, want %q", tt.typ, got, tt.link)
		}
		if got := Icon(tt.typ); got != tt.icon {
			t.Errorf("Icon(%q) = %q, want %q", tt.typ, got, tt.icon)
		}
	}
}

func testDirectory() *directory.Static {
	return directory.NewStatic(
		[]directory.User{
			{ID: "u-alice", Name: "alice", DisplayName: "Alice", Teams: []string{"t-data"}},
			{ID: "u-bob", Name: "bob"},
		},
		[]directory.Team{{ID: "t-data", Name: "data", DisplayName: "Data Platform"}},
	)
}

func TestCanEdit(t *testing.T) {
	dir := testDirectory()
	tests := []struct {
		name        string
		owner, user string
		want        bool
	}{
		{"Unowned", "", "u-bob", true},
		{"UserOwnerSelf", "u-bob", "u-bob", true},
		{"UserOwnerOther", "u-bob", "u-alice", false},
		{"TeamMember", "t-data", "u-alice", true},
		{"TeamNonMember", "t-data", "u-bob", false},
		{"UnknownOwner", "t-ghost", "u-alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEdit(dir, tt.owner, tt.user); got != tt.want {
				t.Errorf("CanEdit(%q, %q) = %v, want %v", tt.owner, tt.user, got, tt.want)
			}
		})
	}
}

func TestPanel(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	d := Details{
		FullyQualifiedName: "shop.public.orders",
		Type:               TypeTable,
		OwnerID:            "t-data",
		Tags:               []string{"Tier.Tier1", "PII.None"},
		Usage:              &UsageSummary{PercentileRank: 88.2, Count: 12345},
		Profile: []ProfilePoint{
			{Date: day(3), RowCount: 1200, ColumnCount: 9},
			{Date: day(2), RowCount: 1100, ColumnCount: 9},
		},
	}
	want := []InfoRow{
		{Key: "Owner", Kind: KindLink, Text: "Data Platform", Link: "/teams/data"},
		{Key: "Tier", Text: "Tier1"},
		{Key: "Usage", Text: "High - 88th pctile"},
		{Key: "Queries", Text: "12,345 past week"},
		{Key: "Columns", Text: "9"},
		{Key: "Rows", Kind: KindChart, Text: "1,200", Chart: []ChartPoint{
			{Label: "2024-03-02", Value: 1100},
			{Label: "2024-03-03", Value: 1200},
		}},
	}
	if diff := cmp.Diff(want, Panel(d, testDirectory())); diff != "" {
		t.Errorf("Panel mismatch (-want +got):\n%s", diff)
	}
}

func TestPanelPlaceholders(t *testing.T) {
	d := Details{FullyQualifiedName: "shop.public.orders", OwnerID: "u-alice"}
	want := []InfoRow{
		{Key: "Owner", Text: "Alice"},
		{Key: "Tier"},
		{Key: "Usage", Text: "--"},
		{Key: "Queries", Text: "-- past week"},
		{Key: "Columns", Text: "--"},
		{Key: "Rows", Text: "--"},
	}
	if diff := cmp.Diff(want, Panel(d, testDirectory())); diff != "" {
		t.Errorf("Panel mismatch (-want +got):\n%s", diff)
	}
}

func TestInfoKindJSON(t *testing.T) {
	data, err := json.Marshal(InfoRow{Key: "Owner", Kind: KindLink, Text: "x", Link: "/teams/x"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"key":"Owner","kind":"link","text":"x","link":"/teams/x"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
	var row InfoRow
	if err := json.Unmarshal(data, &row); err != nil || row.Kind != KindLink {
		t.Errorf("Unmarshal = %+v, %v", row, err)
	}
	if err := json.Unmarshal([]byte(`{"kind":"pie"}`), &row); err == nil {
		t.Error("expected error for unknown kind")
	}
}

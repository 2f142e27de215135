package entity

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/lineage/pkg/directory"
)

// InfoKind says how an InfoRow's value is presented.
type InfoKind int

const (
	KindText InfoKind = iota
	KindLink
	KindChart
)

func (k InfoKind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindChart:
		return "chart"
	default:
		return "text"
	}
}

func (k InfoKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *InfoKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "text", "":
		*k = KindText
	case "link":
		*k = KindLink
	case "chart":
		*k = KindChart
	default:
		return fmt.Errorf("unknown info kind %q", s)
	}
	return nil
}

// ChartPoint is one value of a chart row.
type ChartPoint struct {
	Label string `json:"date"`
	Value int64  `json:"value"`
}

// InfoRow is one line of the detail panel. Text is set for every kind: for
// links it is the anchor text and for charts a short summary.
type InfoRow struct {
	Key   string       `json:"key"`
	Kind  InfoKind     `json:"kind"`
	Text  string       `json:"text"`
	Link  string       `json:"link,omitempty"`
	Chart []ChartPoint `json:"chart,omitempty"`
}

// Panel builds the detail rows for an entity: Owner, Tier, Usage, Queries,
// Columns and Rows, in that order.
func Panel(d Details, dir directory.Directory) []InfoRow {
	return []InfoRow{
		ownerRow(d, dir),
		{Key: "Tier", Text: TierLabel(Tier(d.Tags))},
		usageRow(d),
		queriesRow(d),
		columnsRow(d),
		rowsRow(d),
	}
}

func ownerRow(d Details, dir directory.Directory) InfoRow {
	row := InfoRow{Key: "Owner"}
	owner, ok := directory.ResolveOwner(dir, d.OwnerID)
	if !ok {
		return row
	}
	if owner.IsTeam() {
		row.Kind = KindLink
		row.Text = owner.DisplayName
		row.Link = TeamLink(owner.Name)
		return row
	}
	row.Text = owner.Name
	return row
}

func usageRow(d Details) InfoRow {
	row := InfoRow{Key: "Usage", Text: Placeholder}
	if d.Usage != nil {
		row.Text = UsagePercentile(d.Usage.PercentileRank)
	}
	return row
}

func queriesRow(d Details) InfoRow {
	count := Placeholder
	if d.Usage != nil {
		count = humanize.Comma(d.Usage.Count)
	}
	return InfoRow{Key: "Queries", Text: count + " past week"}
}

func columnsRow(d Details) InfoRow {
	row := InfoRow{Key: "Columns", Text: Placeholder}
	if len(d.Profile) > 0 && d.Profile[0].ColumnCount > 0 {
		row.Text = strconv.Itoa(d.Profile[0].ColumnCount)
	}
	return row
}

// rowsRow charts row counts oldest first; profiles arrive newest first.
func rowsRow(d Details) InfoRow {
	if len(d.Profile) == 0 {
		return InfoRow{Key: "Rows", Text: Placeholder}
	}
	points := make([]ChartPoint, len(d.Profile))
	for i, p := range d.Profile {
		points[len(points)-1-i] = ChartPoint{
			Label: p.Date.Format("2006-01-02"),
			Value: p.RowCount,
		}
	}
	return InfoRow{
		Key:   "Rows",
		Kind:  KindChart,
		Text:  humanize.Comma(d.Profile[0].RowCount),
		Chart: points,
	}
}

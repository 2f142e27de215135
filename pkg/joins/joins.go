// Package joins summarizes which tables a table is frequently joined with.
//
// The catalog reports joins per column: for each column of a table, the
// columns of other tables it was joined with and how often. [FrequentlyJoined]
// rolls these up to table level, and [ToRecord] turns the result into a
// lineage record so the join neighborhood can be laid out and rendered like
// any other lineage graph, with join counts as edge weights.
package joins

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// JoinedColumn is a column on the other side of a join.
type JoinedColumn struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
	JoinCount          int    `json:"joinCount"`
}

// ColumnJoin lists the joins recorded for one column.
type ColumnJoin struct {
	ColumnName string         `json:"columnName"`
	JoinedWith []JoinedColumn `json:"joinedWith"`
}

// TableJoins is the catalog's join report for a table.
type TableJoins struct {
	StartDate   string       `json:"startDate,omitempty"`
	DayCount    int          `json:"dayCount,omitempty"`
	ColumnJoins []ColumnJoin `json:"columnJoins"`
}

// JoinedTable is one row of the frequently-joined list.
type JoinedTable struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	JoinCount          int    `json:"joinCount"`
}

// FQN segments, in order.
var fqnParts = []string{"service", "database", "table", "column"}

// TableFQN drops the column segment of a "service.database.table.column"
// name.
func TableFQN(columnFQN string) string {
	parts := strings.Split(columnFQN, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".")
}

// PartialName keeps the named segments of an FQN, e.g. PartialName(fqn,
// "database", "table") returns "database.table". Segments missing from the
// FQN are skipped.
func PartialName(fqn string, keep ...string) string {
	parts := strings.Split(fqn, ".")
	var out []string
	for i, name := range fqnParts {
		if i < len(parts) && slices.Contains(keep, name) {
			out = append(out, parts[i])
		}
	}
	return strings.Join(out, ".")
}

// FrequentlyJoined aggregates column joins by table. Counts are summed across
// columns; the result is ordered by count, highest first, then by name.
func FrequentlyJoined(joins []ColumnJoin) []JoinedTable {
	index := make(map[string]int)
	var out []JoinedTable
	for _, cj := range joins {
		for _, jc := range cj.JoinedWith {
			if jc.FullyQualifiedName == "" {
				continue
			}
			fqn := TableFQN(jc.FullyQualifiedName)
			if i, ok := index[fqn]; ok {
				out[i].JoinCount += jc.JoinCount
				continue
			}
			index[fqn] = len(out)
			out = append(out, JoinedTable{
				Name:               PartialName(fqn, "database", "table"),
				FullyQualifiedName: fqn,
				JoinCount:          jc.JoinCount,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b JoinedTable) int {
		if c := cmp.Compare(b.JoinCount, a.JoinCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// ToRecord builds a lineage record with table as the focal entity and one
// downstream edge per frequently joined table, weighted by join count.
func ToRecord(table lineage.EntityReference, joins []ColumnJoin) lineage.Record {
	rec := lineage.Record{Entity: table}
	for _, jt := range FrequentlyJoined(joins) {
		if jt.FullyQualifiedName == table.ID {
			continue
		}
		rec.Nodes = append(rec.Nodes, lineage.EntityReference{
			ID:                 jt.FullyQualifiedName,
			Name:               jt.Name,
			Type:               "table",
			FullyQualifiedName: jt.FullyQualifiedName,
		})
		rec.DownstreamEdges = append(rec.DownstreamEdges, lineage.Edge{
			FromEntity: table.ID,
			ToEntity:   jt.FullyQualifiedName,
			Weight:     jt.JoinCount,
		})
	}
	return rec
}

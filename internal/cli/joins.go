package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/entity"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/joins"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// joinsCommand lists the tables most frequently joined with a table.
func (c *CLI) joinsCommand() *cobra.Command {
	var (
		table  string
		output string
		limit  int
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "joins [joins.json]",
		Short: "List the tables most frequently joined with a table",
		Long: `List the tables most frequently joined with a table.

The input is the catalog's table join report: per column, the columns of other
tables it was joined with and how often. Counts are summed per table.

With --table and --output the join neighborhood is also written as a layout,
with the table as focal entity and one downstream edge per joined table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := readJoins(args[0])
			if err != nil {
				return err
			}

			tables := joins.FrequentlyJoined(report.ColumnJoins)
			if len(tables) == 0 {
				printInfo("No joins recorded")
				return nil
			}
			shown := tables
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			fmt.Println(joinsTable(shown))
			if len(shown) < len(tables) {
				printDetail("%d more not shown", len(tables)-len(shown))
			}

			if output == "" {
				return nil
			}
			if table == "" {
				return fmt.Errorf("--output needs --table to name the focal table")
			}
			return c.writeJoinLayout(cmd, table, report.ColumnJoins, output, opts)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "fully qualified name of the joined table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the join neighborhood layout to this file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n tables (0 = all)")
	addUnitFlags(cmd, &opts)

	return cmd
}

func readJoins(path string) (joins.TableJoins, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return joins.TableJoins{}, fmt.Errorf("read %s: %w", path, err)
	}
	var report joins.TableJoins
	if err := json.Unmarshal(data, &report); err != nil {
		return joins.TableJoins{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return report, nil
}

func joinsTable(tables []joins.JoinedTable) string {
	rows := make([][]string, len(tables))
	for i, t := range tables {
		rows[i] = []string{strconv.Itoa(i + 1), t.Name, humanize.Comma(int64(t.JoinCount)), t.FullyQualifiedName}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Table", "Joins", "Fully qualified name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return StyleNumber
			case col == 3:
				return StyleDim
			}
			return StyleValue
		}).
		String()
}

func (c *CLI) writeJoinLayout(cmd *cobra.Command, table string, cj []joins.ColumnJoin, output string, opts pipeline.Options) error {
	ctx := cmd.Context()
	opts = c.layoutOptions(cmd, opts)
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, err := joinLayout(ctx, runner, table, cj, opts)
	if err != nil {
		return err
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printNewline()
	printSuccess("Join layout complete")
	printFile(output)
	printStats(l, false, 0)
	return nil
}

func joinLayout(ctx context.Context, runner *pipeline.Runner, table string, cj []joins.ColumnJoin, opts pipeline.Options) (graph.Layout, error) {
	ref := lineage.EntityReference{
		ID:                 table,
		Name:               table,
		Type:               entity.TypeTable,
		FullyQualifiedName: table,
	}
	return runner.Layout(ctx, joins.ToRecord(ref, cj), opts)
}

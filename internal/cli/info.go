package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/entity"
)

// infoCommand prints the detail panel for an entity.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		dirPath string
		user    string
	)

	cmd := &cobra.Command{
		Use:   "info [details.json]",
		Short: "Show the detail panel for a catalog entity",
		Long: `Show the detail panel for a catalog entity.

The input is the entity's catalog details: fully qualified name, type, owner,
tags, usage summary and table profile. Owners are resolved through the
user and team directory given by --directory or the config file.

--user names the viewer; the panel then says whether they may edit the entity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDetails(args[0])
			if err != nil {
				return err
			}
			dir, err := c.loadDirectory(dirPath)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(d.FullyQualifiedName) + " " + StyleDim.Render(entity.Icon(d.Type)))
			printDetail("%s", entity.Link(d.Type, d.FullyQualifiedName))
			printNewline()

			for _, row := range entity.Panel(d, dir) {
				printKeyValue(row.Key, infoValue(row))
			}
			if tags := entity.TagsWithoutTier(d.Tags); len(tags) > 0 {
				printKeyValue("Tags", strings.Join(tags, ", "))
			}
			if user != "" {
				editable := "no"
				if entity.CanEdit(dir, d.OwnerID, user) {
					editable = "yes"
				}
				printKeyValue("Editable", editable)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirPath, "directory", "", "user and team directory (TOML)")
	cmd.Flags().StringVar(&user, "user", "", "viewer user id for the edit check")

	return cmd
}

func readDetails(path string) (entity.Details, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Details{}, fmt.Errorf("read %s: %w", path, err)
	}
	var d entity.Details
	if err := json.Unmarshal(data, &d); err != nil {
		return entity.Details{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// infoValue renders a panel row for the terminal.
func infoValue(row entity.InfoRow) string {
	switch row.Kind {
	case entity.KindLink:
		return StyleLink.Render(row.Text) + " " + StyleDim.Render(row.Link)
	case entity.KindChart:
		return row.Text + " " + StyleHighlight.Render(sparkline(row.Chart))
	}
	if row.Text == "" {
		return entity.Placeholder
	}
	return row.Text
}

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws one tick per point scaled between the series min and max.
func sparkline(points []entity.ChartPoint) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		lo, hi = min(lo, p.Value), max(hi, p.Value)
	}
	var b strings.Builder
	for _, p := range points {
		i := 0
		if hi > lo {
			i = int((p.Value - lo) * int64(len(sparkTicks)-1) / (hi - lo))
		}
		b.WriteRune(sparkTicks[i])
	}
	return b.String()
}

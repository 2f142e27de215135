package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [layout.json|record.json]",
		Short: "Render a lineage graph to SVG, PNG or DOT",
		Long: `Render a lineage graph to SVG, PNG or DOT.

The input is either a layout produced by 'layout' or a catalog record, which
is laid out first. Nodes keep their computed positions in the output.

Use --select with a node id (e.g. node-orders-0) to highlight one node the way
the detail panel does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutOptions(cmd, opts)
			opts.Formats = parseFormats(formatsStr)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Selected, "select", "", "node id to highlight")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show entity type and fully qualified name in nodes")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts and artifacts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addUnitFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Loading %s", filepath.Base(input))
	spinner.Start()
	l, cached, err := loadLayout(ctx, runner, input, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.SetMessage("Rendering %d nodes of %s as %s",
		len(l.Nodes), l.EntityID, strings.Join(opts.Formats, ", "))
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	elapsed := spinner.Stop()

	if l.Empty {
		printWarning("%s: %s", l.EntityID, l.Message)
	}
	paths := outputPaths(output, input, opts.Formats)
	printSuccess("Rendered %s", l.EntityID)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(l, cached && renderHit, elapsed)
	return nil
}

// loadLayout reads input as a layout, or as a record to lay out. The bool
// reports whether the layout came from a file or the cache.
func loadLayout(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (graph.Layout, bool, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("read %s: %w", input, err)
	}
	if l, err := graph.UnmarshalLayout(data); err == nil {
		loggerFromContext(ctx).Debug("input is a layout", "file", input, "nodes", len(l.Nodes))
		return l, true, nil
	}
	rec, err := graph.UnmarshalRecord(data)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("%s is neither a layout nor a record: %w", input, err)
	}
	l, hit, err := runner.LayoutWithCacheInfo(ctx, rec, opts)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	return l, hit, nil
}

// outputPaths names one file per format. A single format with an explicit
// output uses it verbatim; otherwise files are <base>.<format>, with JSON
// layouts written as <base>.layout.json so a record input is never
// overwritten.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		ext := f
		if f == pipeline.FormatJSON {
			ext = "layout.json"
		}
		paths[f] = base + "." + ext
	}
	return paths
}

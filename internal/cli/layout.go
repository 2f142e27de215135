package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// layoutCommand creates the layout command for computing lineage layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		watch   bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "layout [record.json]",
		Short: "Compute the lineage layout for a catalog record",
		Long: `Compute the lineage layout for a catalog record.

The record holds a focal entity, the entities around it and the upstream and
downstream edges between them. The output is a layout.json with one
positioned node per entity instance, which 'render' turns into SVG, PNG or DOT.

A record without any edges produces an empty layout, not an error.

With --watch the layout is recomputed every time the record file changes.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.layoutOptions(cmd, opts)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			input := args[0]
			if output == "" {
				output = basePath("", input) + ".layout.json"
			}
			if err := c.runLayout(ctx, runner, input, output, opts); err != nil {
				return err
			}
			if !watch {
				printNewline()
				printNextStep("Render", appName+" render "+output)
				return nil
			}

			printNewline()
			printInfo("Watching %s for changes (ctrl+c to stop)", input)
			return watchFile(ctx, c.Logger, input, func() {
				p := newProgress(c.Logger)
				if err := c.runLayout(ctx, runner, input, output, opts); err != nil {
					c.Logger.Error("layout failed", "file", input, "err", err)
					return
				}
				p.done("re-laid out", "file", input)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute when the record file changes")
	addUnitFlags(cmd, &opts)

	return cmd
}

// runLayout loads the record, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	rec, err := graph.ReadRecordFile(input)
	if err != nil {
		return fmt.Errorf("load record %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Laying out %s (%d upstream, %d downstream edges)",
		rec.Entity.Label(), len(rec.UpstreamEdges), len(rec.DownstreamEdges))
	spinner.Start()

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, rec, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	elapsed := spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}

	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	if l.Empty {
		printWarning("%s: %s", rec.Entity.ID, l.Message)
	} else {
		printSuccess("Layout complete")
	}
	printFile(output)
	printStats(l, cacheHit, elapsed)
	return nil
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Selected is the instance ID of the highlighted node, if any.
	Selected string

	// Detailed adds the entity type and depth under each label.
	Detailed bool
}

// roleStyle holds the DOT attributes for a connector role.
type roleStyle struct {
	fill  string
	color string
}

var roleStyles = map[string]roleStyle{
	string(lineage.RoleInput):   {fill: "#e8f5e9", color: "#2e7d32"},
	string(lineage.RoleOutput):  {fill: "#e3f2fd", color: "#1565c0"},
	string(lineage.RoleDefault): {fill: "white", color: "#616161"},
}

// ToDOT converts a layout to Graphviz DOT with every node pinned at its
// layout position. The result is meant for the neato engine, which honours
// pinned positions; y is inverted because Graphviz grows upward.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#9e9e9e\", arrowsize=0.7];\n")
	buf.WriteString("\n")

	if l.Empty {
		fmt.Fprintf(&buf, "  empty [shape=plaintext, style=\"\", label=%q, pos=\"0,0!\"];\n", l.Message)
		buf.WriteString("}\n")
		return buf.String()
	}

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == opts.Selected)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if e.Weight > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, strconv.Itoa(e.Weight))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\n%s · depth %d", n.Label, n.Type, n.Depth)
}

func fmtAttrs(n graph.Node, label string, selected bool) []string {
	style, ok := roleStyles[n.Role]
	if !ok {
		style = roleStyles[string(lineage.RoleDefault)]
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.X), fmtCoord(-n.Y)),
		fmt.Sprintf("fillcolor=%q", style.fill),
		fmt.Sprintf("color=%q", style.color),
	}
	if n.Core {
		attrs = append(attrs, "penwidth=2.5", "fontname=\"Helvetica-Bold\"")
	}
	if selected {
		attrs = append(attrs, "fillcolor=\"#fff59d\"", "color=\"#f57f17\"", "penwidth=3")
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	buf, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(buf), nil
}

// RenderPNG renders a DOT graph to PNG using the Graphviz neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Package nodelink renders lineage layouts as node-link diagrams.
//
// # Usage
//
// Convert a layout to DOT, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Selected: "node-t0-0"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Positions
//
// Graphviz does not compute the layout. Every node is pinned with
// pos="x,y!" at the coordinates produced by the lineage builder and the
// neato engine draws edges between the fixed points. Upstream nodes appear
// left of the focal entity, downstream nodes to the right.
//
// # Styles
//
// Input nodes are green, output nodes blue, pass-through nodes neutral. The
// focal entity has a bold outline and the selected node, when set, is
// highlighted in amber. Layouts without lineage render a single
// "No Lineage data available" caption.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly, so no system Graphviz installation is needed.
package nodelink

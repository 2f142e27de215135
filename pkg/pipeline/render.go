package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
)

// RenderLayout generates output artifacts in the requested formats. The DOT
// source is regenerated from the layout so that the selection highlight
// always matches opts.Selected.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.Selected != "" && !l.Empty {
		if _, ok := l.Node(opts.Selected); !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "node %s not in layout", opts.Selected)
		}
	}

	l.DOT = nodelink.ToDOT(l, nodelink.Options{Selected: opts.Selected, Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, l.DOT)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, l.DOT)
		case FormatDOT:
			data = []byte(l.DOT)
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

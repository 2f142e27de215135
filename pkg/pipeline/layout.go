package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// GenerateLayout builds the positioned graph for a record. A record without
// any edges yields an empty layout rather than an error.
func GenerateLayout(r lineage.Record, opts Options) (graph.Layout, error) {
	opts.SetLayoutDefaults()

	b := lineage.NewBuilder(lineage.WithUnits(opts.UnitX, opts.UnitY))
	g, err := b.Build(r)
	switch {
	case stderrors.Is(err, lineage.ErrNoLineage):
		l := graph.EmptyLayout(r.Entity)
		l.UnitX, l.UnitY = opts.UnitX, opts.UnitY
		return l, nil
	case stderrors.Is(err, lineage.ErrMissingFocalEntity):
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInvalidRecord, err, "record has no focal entity")
	case err != nil:
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "build lineage graph for %s", r.Entity.ID)
	}

	l := graph.FromGraph(g)
	l.UnitX, l.UnitY = opts.UnitX, opts.UnitY
	return l, nil
}

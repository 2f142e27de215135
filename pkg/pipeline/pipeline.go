// Package pipeline runs the record → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: build a positioned graph from a lineage record
//  2. Render: produce SVG, PNG, DOT or JSON from a layout
//
// Each stage can be run on its own or chained with [Runner.Execute]. Both
// stages are cached through [cache.Cache] with content-addressed keys, and
// concurrent identical layout requests are collapsed into one build.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, record, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// A record without lineage is not an error here: the result carries a layout
// with Empty set and renders a placeholder.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultUnitX is the horizontal distance unit; depth d sits at d*2*UnitX.
	DefaultUnitX = lineage.DefaultUnitX

	// DefaultUnitY is the vertical distance between slots.
	DefaultUnitY = lineage.DefaultUnitY
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	UnitX float64 `json:"unit_x,omitempty"`
	UnitY float64 `json:"unit_y,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Selected string   `json:"selected,omitempty"` // node instance to highlight
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RecordHash is the content hash of the input record.
	RecordHash string

	// Layout is the positioned graph.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.UnitX <= 0 {
		o.UnitX = DefaultUnitX
	}
	if o.UnitY <= 0 {
		o.UnitY = DefaultUnitY
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := errors.ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Selected != "" {
		return errors.ValidateNodeID(o.Selected)
	}
	return nil
}

// ValidateAndSetDefaults prepares options for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetLayoutDefaults()
	return o.ValidateForRender()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{UnitX: o.UnitX, UnitY: o.UnitY}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Selected: o.Selected,
		Detailed: o.Detailed,
	}
}

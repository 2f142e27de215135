package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner keeps no pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	layouts singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout then render with caching.
func (r *Runner) Execute(ctx context.Context, rec lineage.Record, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	hash, err := cache.HashJSON(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "hash record")
	}
	result := &Result{RecordHash: hash}

	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, rec, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"entity", rec.Entity.ID,
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"empty", l.Empty,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo builds a layout with caching and returns cache hit
// info. Concurrent calls for the same record and options share one build.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, rec lineage.Record, opts Options) (graph.Layout, bool, error) {
	if err := rec.Validate(); err != nil {
		return graph.Layout{}, false, errors.Wrap(errors.ErrCodeInvalidRecord, err, "invalid record")
	}
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	hash, err := cache.HashJSON(rec)
	if err != nil {
		return graph.Layout{}, false, errors.Wrap(errors.ErrCodeInvalidRecord, err, "hash record")
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "err", err)
		} else if err != nil {
			opts.Logger.Warn("layout cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	v, err, shared := r.layouts.Do(cacheKey, func() (any, error) {
		return r.buildLayout(ctx, rec, opts, hash, cacheKey)
	})
	if err != nil {
		return graph.Layout{}, false, err
	}
	if shared {
		opts.Logger.Debug("shared in-flight layout", "entity", rec.Entity.ID)
	}
	return v.(graph.Layout), false, nil
}

func (r *Runner) buildLayout(ctx context.Context, rec lineage.Record, opts Options, recordHash, cacheKey string) (graph.Layout, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, rec.Entity.ID, len(rec.UpstreamEdges)+len(rec.DownstreamEdges))
	start := time.Now()

	l, err := GenerateLayout(rec, opts)
	hooks.OnLayoutComplete(ctx, rec.Entity.ID, len(l.Nodes), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, err
	}
	l.Revision = recordHash

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, rec lineage.Record, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, rec, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderLayout(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

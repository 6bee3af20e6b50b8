package heightmap

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compositeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_composite_cache_hits_total",
		Help: "The total number of hits on the composite raster cache",
	})
	compositeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_composite_cache_misses_total",
		Help: "The total number of misses on the composite raster cache",
	})
	compositeCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_composite_cache_evictions_total",
		Help: "The total number of evictions from the composite raster cache",
	})
	buildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heightmap_build_errors_total",
		Help: "The total number of failed builds by category",
	}, []string{"category"})
)

// A Builder builds composite rasters from named tiles.
type Builder struct {
	tileSet            *TileSet
	nodataPolicy       NodataPolicy
	logger             *slog.Logger
	compositeCacheSize int
	compositeCache     *lru.Cache[string, *CompositeRaster]
}

// A BuilderOption sets an option on a Builder.
type BuilderOption func(*Builder)

// NewBuilder returns a new Builder that loads tiles from tileSet.
func NewBuilder(tileSet *TileSet, options ...BuilderOption) (*Builder, error) {
	b := &Builder{
		tileSet:            tileSet,
		logger:             slog.New(slog.DiscardHandler),
		compositeCacheSize: 4,
	}
	for _, option := range options {
		option(b)
	}

	var err error
	b.compositeCache, err = lru.NewWithEvict(max(b.compositeCacheSize, 1), func(key string, value *CompositeRaster) {
		compositeCacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func WithCompositeCacheSize(compositeCacheSize int) BuilderOption {
	return func(b *Builder) {
		b.compositeCacheSize = compositeCacheSize
	}
}

func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

func WithNodataPolicy(nodataPolicy NodataPolicy) BuilderOption {
	return func(b *Builder) {
		b.nodataPolicy = nodataPolicy
	}
}

// Build returns the normalized composite raster of the named tiles. The
// order of names does not matter.
func (b *Builder) Build(ctx context.Context, names []string) (*CompositeRaster, error) {
	raster, err := b.Composite(ctx, names)
	if err != nil {
		return nil, err
	}
	if err := raster.Normalize(); err != nil {
		countBuildError(err)
		return nil, err
	}
	b.logger.InfoContext(ctx, "built composite",
		"tiles", len(names),
		"width", raster.Width,
		"height", raster.Height,
	)
	return raster, nil
}

// Composite returns the composite raster of the named tiles before
// normalization. The returned raster belongs to the caller.
func (b *Builder) Composite(ctx context.Context, names []string) (*CompositeRaster, error) {
	key := compositeCacheKey(names)
	if raster, ok := b.compositeCache.Get(key); ok {
		compositeCacheHits.Inc()
		b.logger.DebugContext(ctx, "composite cache hit", "key", key)
		return raster.Clone(), nil
	}
	compositeCacheMisses.Inc()

	raster, err := b.composite(ctx, names)
	if err != nil {
		countBuildError(err)
		return nil, err
	}
	b.compositeCache.Add(key, raster)
	return raster.Clone(), nil
}

// Elevation returns the bilinearly interpolated elevations at coords in the
// composite raster of the named tiles.
func (b *Builder) Elevation(ctx context.Context, names []string, coords []Coord) ([]float64, error) {
	raster, err := b.Composite(ctx, names)
	if err != nil {
		return nil, err
	}
	return InterpolateBilinear(ctx, raster, coords)
}

func (b *Builder) composite(ctx context.Context, names []string) (*CompositeRaster, error) {
	tiles, err := b.tileSet.Tiles(ctx, names)
	if err != nil {
		return nil, err
	}
	b.logger.DebugContext(ctx, "loaded tiles", "count", len(tiles))

	for i, tile := range tiles {
		tiles[i] = b.nodataPolicy.Apply(tile)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	geometry, err := ResolveGeometry(tiles)
	if err != nil {
		return nil, err
	}
	b.logger.DebugContext(ctx, "resolved geometry",
		"minX", geometry.MinX,
		"maxY", geometry.MaxY,
		"width", geometry.Width,
		"height", geometry.Height,
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Composite(geometry)
}

// compositeCacheKey returns a key identifying the set of names.
func compositeCacheKey(names []string) string {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = strings.ToUpper(name)
	}
	slices.Sort(keys)
	return strings.Join(slices.Compact(keys), ",")
}

func countBuildError(err error) {
	category := "other"
	switch {
	case errors.Is(err, ErrFormat):
		category = "format"
	case errors.Is(err, ErrGeometry):
		category = "geometry"
	case errors.Is(err, ErrNumeric):
		category = "numeric"
	}
	buildErrors.WithLabelValues(category).Inc()
}
